package model

import (
	"time"

	"gorm.io/gorm"
)

// CampusEvent is a scheduled campus event (seminar, fest, exam window)
type CampusEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Venue       string    `gorm:"type:varchar(255)" json:"venue"`
	StartsAt    time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt      time.Time `gorm:"not null" json:"ends_at"`
	CreatedByID uint      `gorm:"not null" json:"created_by_id"`

	// Relationships
	CreatedBy Account `gorm:"foreignKey:CreatedByID" json:"-"`
}

// TableName specifies the table name for CampusEvent
func (CampusEvent) TableName() string {
	return "campus_events"
}
