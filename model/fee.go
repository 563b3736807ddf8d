package model

import (
	"time"

	"gorm.io/gorm"
)

// Fee invoice statuses
const (
	FeePending = "pending"
	FeePaid    = "paid"
	FeeOverdue = "overdue"
)

// FeeInvoice is a charge raised against a student for a term. The overdue
// cron job flips pending invoices past their due date to overdue.
type FeeInvoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	StudentID     uint       `gorm:"not null;index" json:"student_id"`
	Semester      int        `gorm:"not null" json:"semester"`
	Description   string     `gorm:"type:varchar(255)" json:"description"` // tuition, hostel, exam
	AmountCents   int64      `gorm:"not null" json:"amount_cents"`
	Currency      string     `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	DueAt         time.Time  `gorm:"not null;index" json:"due_at"`
	Status        string     `gorm:"type:varchar(10);default:'pending';index" json:"status"` // pending, paid, overdue
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	ReceiptNumber *string    `gorm:"type:varchar(40);uniqueIndex" json:"receipt_number,omitempty"`
	IssuedByID    uint       `gorm:"not null" json:"issued_by_id"`

	// Relationships
	Student  Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	IssuedBy Account `gorm:"foreignKey:IssuedByID" json:"-"`
}

// TableName specifies the table name for FeeInvoice
func (FeeInvoice) TableName() string {
	return "fee_invoices"
}
