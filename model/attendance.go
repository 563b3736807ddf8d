package model

import (
	"time"

	"gorm.io/gorm"
)

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// AttendanceRecord is one student's attendance for one subject on one day.
// The composite unique index makes re-marking an upsert rather than a
// duplicate row.
type AttendanceRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SubjectID  uint   `gorm:"not null;index;uniqueIndex:idx_attendance_entry" json:"subject_id"`
	StudentID  uint   `gorm:"not null;index;uniqueIndex:idx_attendance_entry" json:"student_id"`
	Date       string `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_entry" json:"date"` // YYYY-MM-DD
	Status     string `gorm:"type:varchar(10);not null" json:"status"`                                // present, absent, late
	MarkedByID uint   `gorm:"not null" json:"marked_by_id"`

	// Relationships
	Subject  Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	Student  Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	MarkedBy Account `gorm:"foreignKey:MarkedByID" json:"-"`
}

// TableName specifies the table name for AttendanceRecord
func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// ValidAttendanceStatus reports whether s is a known attendance status.
func ValidAttendanceStatus(s string) bool {
	return s == AttendancePresent || s == AttendanceAbsent || s == AttendanceLate
}
