package model

import "time"

// Scan is one decoded code reported by a camera client.
type Scan struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	CameraName string    `gorm:"not null;index" json:"camera_name"`
	Area       string    `gorm:"not null;index" json:"area"`
	CameraType string    `gorm:"not null" json:"camera_type"`
	ClientIP   string    `gorm:"not null" json:"client_ip"`
	CameraURL  string    `gorm:"not null" json:"camera_url"`
	Barcode    string    `gorm:"not null;index" json:"barcode"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
}
