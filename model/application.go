package model

import (
	"time"

	"gorm.io/gorm"
)

// ApplicationStatus is the review state of an admission application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// AdmissionApplication is a prospective student's admission submission.
// Identity fields are immutable after submission; only the review fields
// (Status, ReviewerID, ReviewedAt, RejectionReason, Department, Program)
// are mutated, and only by the provisioning engine.
//
// Invariants: RejectionReason is set iff Status is rejected; ReviewerID and
// ReviewedAt are set iff Status is not pending.
type AdmissionApplication struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Email       string `gorm:"index;not null" json:"email"`
	Phone       string `gorm:"type:varchar(20)" json:"phone"`
	Gender      string `gorm:"type:varchar(20)" json:"gender"`
	DateOfBirth string `gorm:"type:varchar(10)" json:"date_of_birth"` // YYYY-MM-DD
	Address     string `gorm:"type:text" json:"address"`
	Department  string `gorm:"type:varchar(100);not null" json:"department"`
	Program     string `gorm:"type:varchar(100);not null" json:"program"`

	Status          ApplicationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ReviewerID      *uint             `json:"reviewer_id,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	RejectionReason string            `gorm:"type:text" json:"rejection_reason,omitempty"`

	// Relationships
	Reviewer  *Account              `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Documents []ApplicationDocument `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// Reviewed reports whether the application has reached a terminal state.
func (a *AdmissionApplication) Reviewed() bool {
	return a.Status != ApplicationPending
}

// ApplicationDocument is an uploaded supporting document (transcript,
// marksheet, photo ID) attached to an application.
type ApplicationDocument struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ApplicationID uint           `gorm:"not null;index" json:"application_id"`
	Kind          string         `gorm:"type:varchar(50);not null" json:"kind"` // transcript, marksheet, id_proof
	FileName      string         `gorm:"not null" json:"file_name"`
	StorageKey    string         `gorm:"uniqueIndex;not null" json:"-"`
	URL           string         `gorm:"type:text" json:"url"`
	ContentType   string         `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes     int64          `json:"size_bytes"`
	PageCount     int            `json:"page_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for ApplicationDocument
func (ApplicationDocument) TableName() string {
	return "application_documents"
}
