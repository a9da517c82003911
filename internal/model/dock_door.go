package model

import "time"

// DockDoor is a loading dock bound to exactly one destination.
type DockDoor struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"uniqueIndex;not null" json:"name"`
	DestinationCodeID int64     `gorm:"index;not null" json:"destination_code_id"`
	Description       *string   `json:"description"`
	IsActive          bool      `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	DestinationCode DestinationCode `gorm:"constraint:OnDelete:RESTRICT" json:"destination_code"`
}
