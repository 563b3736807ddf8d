package model

import (
	"time"

	"gorm.io/gorm"
)

// Faculty is a teaching staff profile. Faculty accounts are provisioned by
// an admin, not through the admission workflow.
type Faculty struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FacultyNumber string `gorm:"uniqueIndex;not null;type:varchar(20)" json:"faculty_number"`
	Name          string `gorm:"not null" json:"name"`
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	Phone         string `gorm:"type:varchar(20)" json:"phone"`
	Department    string `gorm:"type:varchar(100);not null" json:"department"`
	Designation   string `gorm:"type:varchar(100)" json:"designation"` // professor, assistant professor, lecturer

	// Relationships
	Subjects []Subject `gorm:"foreignKey:FacultyID" json:"subjects,omitempty"`
}
