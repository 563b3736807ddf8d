package model

import (
	"time"

	"gorm.io/gorm"
)

// Student statuses
const (
	StudentActive    = "active"
	StudentSuspended = "suspended"
	StudentGraduated = "graduated"
)

// ValidStudentStatus reports whether s is a known student status
func ValidStudentStatus(s string) bool {
	switch s {
	case StudentActive, StudentSuspended, StudentGraduated:
		return true
	}
	return false
}

// Student is the academic profile materialized when an admission application
// is approved. StudentNumber is the human-readable identifier (STU00001, ...)
// and carries a unique index so concurrent provisioning cannot mint the same
// number twice. At most one student exists per email.
type Student struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	StudentNumber string `gorm:"uniqueIndex;not null;type:varchar(20)" json:"student_number"`
	Name          string `gorm:"not null" json:"name"`
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	Phone         string `gorm:"type:varchar(20)" json:"phone"`
	Gender        string `gorm:"type:varchar(20)" json:"gender"`
	DateOfBirth   string `gorm:"type:varchar(10)" json:"date_of_birth"`
	Address       string `gorm:"type:text" json:"address"`

	Department string `gorm:"type:varchar(100);not null" json:"department"`
	Program    string `gorm:"type:varchar(100);not null" json:"program"`
	Semester   int    `gorm:"default:1" json:"semester"`
	Status     string `gorm:"type:varchar(20);default:'active'" json:"status"` // active, suspended, graduated

	ApplicationID *uint `gorm:"index" json:"application_id,omitempty"`

	// Relationships
	Subjects    []Subject    `gorm:"many2many:student_subjects" json:"subjects,omitempty"`
	FeeInvoices []FeeInvoice `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}
