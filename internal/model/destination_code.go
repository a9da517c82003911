package model

// DestinationCode maps a short carrier/destination code to its name.
type DestinationCode struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Code string `gorm:"uniqueIndex;size:8;not null" json:"code"`
	Name string `gorm:"size:64;not null" json:"name"`
}
