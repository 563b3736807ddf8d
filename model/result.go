package model

import (
	"time"

	"gorm.io/gorm"
)

// ExamResult is a student's mark for one subject in one exam sitting
type ExamResult struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	StudentID    uint   `gorm:"not null;index;uniqueIndex:idx_result_entry" json:"student_id"`
	SubjectID    uint   `gorm:"not null;index;uniqueIndex:idx_result_entry" json:"subject_id"`
	ExamType     string `gorm:"type:varchar(30);not null;uniqueIndex:idx_result_entry" json:"exam_type"` // midterm, final, practical
	Semester     int    `gorm:"not null" json:"semester"`
	Marks        int    `gorm:"not null" json:"marks"`
	MaxMarks     int    `gorm:"default:100" json:"max_marks"`
	Grade        string `gorm:"type:varchar(5)" json:"grade"`
	RecordedByID uint   `gorm:"not null" json:"recorded_by_id"`

	// Relationships
	Student    Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Subject    Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	RecordedBy Account `gorm:"foreignKey:RecordedByID" json:"-"`
}

// TableName specifies the table name for ExamResult
func (ExamResult) TableName() string {
	return "exam_results"
}

// LetterGrade converts a percentage into the letter grade recorded alongside
// the raw marks.
func LetterGrade(marks, maxMarks int) string {
	if maxMarks <= 0 {
		return ""
	}
	pct := marks * 100 / maxMarks
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "F"
	}
}
