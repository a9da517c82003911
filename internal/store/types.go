package store

import (
	"time"

	"wareeye/internal/model"
)

// ScansPerPage is the fixed page size of scan listings.
const ScansPerPage = 50

// IngestResult describes what a single ingestion did.
type IngestResult struct {
	ScanID int64
	// Checked is true when a dock-door check was attempted for the scan.
	Checked      bool
	Valid        bool
	Transitioned bool
	Reason       string
	DockDoor     *model.DockDoor
	Label        *model.OLPNLabel
}

// ScanFilter narrows a scan listing. Text filters match case-insensitive substrings.
type ScanFilter struct {
	Barcode    string
	Area       string
	CameraName string
	Start      *time.Time
	End        *time.Time
	Page       int
}

// ScanPage is one page of a scan listing, newest first.
type ScanPage struct {
	Items   []model.Scan `json:"items"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
	Total   int64        `json:"total"`
}
