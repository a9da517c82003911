package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"wareeye/internal/model"
	"wareeye/internal/validation"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would break a uniqueness rule or
	// remove a row that is still referenced.
	ErrConflict = errors.New("conflict")
	// ErrInvalidReference is returned when a foreign key points at a missing row.
	ErrInvalidReference = errors.New("invalid reference")
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// IngestScan records scan and, when rule applies to its area, validates and
	// ships the scanned label in the same transaction.
	IngestScan(ctx context.Context, scan *model.Scan, rule *validation.Rule) (*IngestResult, error)

	ListScans(ctx context.Context, filter ScanFilter) (*ScanPage, error)
	UpdateScan(ctx context.Context, scan *model.Scan) error
	DeleteScan(ctx context.Context, id int64) error

	ListDestinationCodes(ctx context.Context) ([]model.DestinationCode, error)
	CreateDestinationCode(ctx context.Context, code *model.DestinationCode) error
	UpdateDestinationCode(ctx context.Context, code *model.DestinationCode) error
	DeleteDestinationCode(ctx context.Context, id int64) error

	ListDockDoors(ctx context.Context) ([]model.DockDoor, error)
	CreateDockDoor(ctx context.Context, door *model.DockDoor) error
	UpdateDockDoor(ctx context.Context, door *model.DockDoor) error
	DeleteDockDoor(ctx context.Context, id int64) error

	ListLabels(ctx context.Context) ([]model.OLPNLabel, error)
	GetLabel(ctx context.Context, id int64) (*model.OLPNLabel, error)
	CreateLabel(ctx context.Context, label *model.OLPNLabel) error
	UpdateLabel(ctx context.Context, label *model.OLPNLabel) error
	DeleteLabel(ctx context.Context, id int64) error

	ListCameras(ctx context.Context) ([]model.Camera, error)
	CreateCamera(ctx context.Context, camera *model.Camera) error
	UpdateCamera(ctx context.Context, camera *model.Camera) error
	DeleteCamera(ctx context.Context, id int64) error
	ToggleScanning(ctx context.Context, id int64) (bool, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for handlers that query directly.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
