package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Announcement audiences
const (
	AudienceAll      = "all"
	AudienceStudents = "students"
	AudienceFaculty  = "faculty"
)

// Announcement is a notice posted by an admin or faculty member, visible to
// the selected audience until it expires.
type Announcement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title      string         `gorm:"not null" json:"title"`
	Body       string         `gorm:"type:text;not null" json:"body"`
	Audience   string         `gorm:"type:varchar(20);default:'all';index" json:"audience"` // all, students, faculty
	PostedByID uint           `gorm:"not null" json:"posted_by_id"`
	ExpiresAt  *time.Time     `gorm:"index" json:"expires_at,omitempty"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"` // links, attachments

	// Relationships
	PostedBy Account `gorm:"foreignKey:PostedByID" json:"posted_by,omitempty"`
}

// VisibleTo reports whether the announcement targets the given account role.
func (a *Announcement) VisibleTo(role string) bool {
	switch a.Audience {
	case AudienceStudents:
		return role == RoleStudent || role == RoleAdmin
	case AudienceFaculty:
		return role == RoleFaculty || role == RoleAdmin
	default:
		return true
	}
}
