package model

import (
	"time"

	"gorm.io/gorm"
)

// Subject represents a taught course unit within a department
type Subject struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Code       string `gorm:"uniqueIndex;not null;type:varchar(20)" json:"code"` // e.g., "CS301"
	Name       string `gorm:"not null" json:"name"`
	Department string `gorm:"type:varchar(100);not null;index" json:"department"`
	Semester   int    `gorm:"default:1" json:"semester"`
	Credits    int    `gorm:"default:4" json:"credits"`

	FacultyID *uint `gorm:"index" json:"faculty_id,omitempty"`

	// Relationships
	Faculty  *Faculty  `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
	Students []Student `gorm:"many2many:student_subjects" json:"-"`
}
