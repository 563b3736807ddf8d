package model

import (
	"time"

	"gorm.io/gorm"
)

// Assignment is work set by a faculty member for a subject
type Assignment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SubjectID   uint      `gorm:"not null;index" json:"subject_id"`
	FacultyID   uint      `gorm:"not null;index" json:"faculty_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	MaxMarks    int       `gorm:"default:100" json:"max_marks"`
	DueAt       time.Time `gorm:"not null" json:"due_at"`

	// Relationships
	Subject     Subject                `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	Faculty     Faculty                `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
	Submissions []AssignmentSubmission `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"submissions,omitempty"`
}

// AssignmentSubmission is a student's answer to an assignment, optionally
// graded later by the faculty member.
type AssignmentSubmission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AssignmentID uint       `gorm:"not null;index;uniqueIndex:idx_submission_entry" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;index;uniqueIndex:idx_submission_entry" json:"student_id"`
	Content      string     `gorm:"type:text" json:"content"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	Marks        *int       `json:"marks,omitempty"`
	Feedback     string     `gorm:"type:text" json:"feedback,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`

	// Relationships
	Assignment Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	Student    Student    `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

// TableName specifies the table name for AssignmentSubmission
func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}
