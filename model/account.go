package model

import (
	"time"

	"gorm.io/gorm"
)

// Account roles
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// Account is a login identity. It is distinct from the domain profile
// (Student/Faculty) it may point at: at most one of ApplicationID, StudentID
// and FacultyID is set, depending on Role. Email is unique across all roles.
type Account struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Name               string         `gorm:"not null" json:"name"`
	Role               string         `gorm:"type:varchar(20);default:'student'" json:"role"` // admin, faculty, student
	IsApproved         bool           `gorm:"default:false" json:"is_approved"`
	MustChangePassword bool           `gorm:"default:false" json:"must_change_password"`
	TokenVersion       int            `gorm:"default:0" json:"-"` // Increment to invalidate all tokens

	// Profile back-references
	ApplicationID *uint `gorm:"index" json:"application_id,omitempty"`
	StudentID     *uint `gorm:"index" json:"student_id,omitempty"`
	FacultyID     *uint `gorm:"index" json:"faculty_id,omitempty"`

	// Relationships
	Application *AdmissionApplication `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Student     *Student              `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Faculty     *Faculty              `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
}

// ValidRole reports whether r is one of the known account roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleFaculty || r == RoleStudent
}
