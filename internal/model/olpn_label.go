package model

import "time"

// Label statuses. A label only moves from pending to shipped.
const (
	LabelStatusPending = "pending"
	LabelStatusShipped = "shipped"
)

// OLPNLabel is an outbound license plate number label attached to a shipment.
type OLPNLabel struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	Barcode           string    `gorm:"uniqueIndex;not null" json:"barcode"`
	DestinationCodeID int64     `gorm:"index;not null" json:"destination_code_id"`
	Status            string    `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Destination DestinationCode `gorm:"foreignKey:DestinationCodeID;constraint:OnDelete:RESTRICT" json:"destination"`
}

// TableName keeps the acronym intact in the table name.
func (OLPNLabel) TableName() string {
	return "olpn_labels"
}

// IsShipped reports whether the label already left through a dock door.
func (l *OLPNLabel) IsShipped() bool {
	return l.Status == LabelStatusShipped
}
