package model

import "fmt"

// Camera describes a capture device registered with the server.
type Camera struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Zone      string `json:"zone"`
	IPAddress string `json:"ip_address"`
	URL       string `json:"url"`
	Password  string `json:"-"`
	Scanning  bool   `gorm:"not null" json:"scanning"`
}

// BuildStreamURL constructs the RTSP URL for a camera at ip.
func BuildStreamURL(ip, password string) string {
	return fmt.Sprintf("rtsp://admin:%s@%s:554/h264Preview_01_main", password, ip)
}
