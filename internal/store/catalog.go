package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wareeye/internal/model"
)

// --- Scans ---

func (s *gormStore) ListScans(ctx context.Context, filter ScanFilter) (*ScanPage, error) {
	q := s.db.WithContext(ctx).Model(&model.Scan{})
	if filter.Barcode != "" {
		q = q.Where("LOWER(barcode) LIKE ?", likePattern(filter.Barcode))
	}
	if filter.Area != "" {
		q = q.Where("LOWER(area) LIKE ?", likePattern(filter.Area))
	}
	if filter.CameraName != "" {
		q = q.Where("LOWER(camera_name) LIKE ?", likePattern(filter.CameraName))
	}
	if filter.Start != nil {
		q = q.Where("timestamp >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("timestamp <= ?", *filter.End)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}

	items := make([]model.Scan, 0)
	if err := q.Order("timestamp DESC").
		Offset((page - 1) * ScansPerPage).
		Limit(ScansPerPage).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}

	return &ScanPage{Items: items, Page: page, PerPage: ScansPerPage, Total: total}, nil
}

func (s *gormStore) UpdateScan(ctx context.Context, scan *model.Scan) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Scan
		if err := first(tx, &existing, scan.ID); err != nil {
			return err
		}
		return tx.Save(scan).Error
	})
}

func (s *gormStore) DeleteScan(ctx context.Context, id int64) error {
	return deleteByID(s.db.WithContext(ctx), &model.Scan{}, id)
}

// --- Destination codes ---

func (s *gormStore) ListDestinationCodes(ctx context.Context) ([]model.DestinationCode, error) {
	codes := make([]model.DestinationCode, 0)
	if err := s.db.WithContext(ctx).Order("code").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list destination codes: %w", err)
	}
	return codes, nil
}

func (s *gormStore) CreateDestinationCode(ctx context.Context, code *model.DestinationCode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &model.DestinationCode{}, "code", code.Code, 0); err != nil {
			return err
		}
		return conflictOnDuplicate(tx.Create(code).Error)
	})
}

func (s *gormStore) UpdateDestinationCode(ctx context.Context, code *model.DestinationCode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.DestinationCode
		if err := first(tx, &existing, code.ID); err != nil {
			return err
		}
		if err := ensureUnique(tx, &model.DestinationCode{}, "code", code.Code, code.ID); err != nil {
			return err
		}
		return conflictOnDuplicate(tx.Save(code).Error)
	})
}

func (s *gormStore) DeleteDestinationCode(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&model.DockDoor{}, &model.OLPNLabel{}} {
			var refs int64
			if err := tx.Model(m).Where("destination_code_id = ?", id).Count(&refs).Error; err != nil {
				return err
			}
			if refs > 0 {
				return fmt.Errorf("destination code %d is still referenced: %w", id, ErrConflict)
			}
		}
		return deleteByID(tx, &model.DestinationCode{}, id)
	})
}

// --- Dock doors ---

func (s *gormStore) ListDockDoors(ctx context.Context) ([]model.DockDoor, error) {
	doors := make([]model.DockDoor, 0)
	if err := s.db.WithContext(ctx).Preload("DestinationCode").Order("created_at DESC").Find(&doors).Error; err != nil {
		return nil, fmt.Errorf("failed to list dock doors: %w", err)
	}
	return doors, nil
}

func (s *gormStore) CreateDockDoor(ctx context.Context, door *model.DockDoor) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &model.DockDoor{}, "name", door.Name, 0); err != nil {
			return err
		}
		if err := ensureDestination(tx, door.DestinationCodeID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(door).Error; err != nil {
			return conflictOnDuplicate(err)
		}
		return first(tx.Preload("DestinationCode"), door, door.ID)
	})
}

func (s *gormStore) UpdateDockDoor(ctx context.Context, door *model.DockDoor) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.DockDoor
		if err := first(tx, &existing, door.ID); err != nil {
			return err
		}
		if err := ensureUnique(tx, &model.DockDoor{}, "name", door.Name, door.ID); err != nil {
			return err
		}
		if err := ensureDestination(tx, door.DestinationCodeID); err != nil {
			return err
		}
		existing.Name = door.Name
		existing.DestinationCodeID = door.DestinationCodeID
		existing.Description = door.Description
		existing.IsActive = door.IsActive
		if err := tx.Omit(clause.Associations).Save(&existing).Error; err != nil {
			return conflictOnDuplicate(err)
		}
		if err := first(tx.Preload("DestinationCode"), &existing, existing.ID); err != nil {
			return err
		}
		*door = existing
		return nil
	})
}

func (s *gormStore) DeleteDockDoor(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM subscription_dock_door_mapping WHERE dock_door_id = ?", id).Error; err != nil {
			return err
		}
		return deleteByID(tx, &model.DockDoor{}, id)
	})
}

// --- OLPN labels ---

func (s *gormStore) ListLabels(ctx context.Context) ([]model.OLPNLabel, error) {
	labels := make([]model.OLPNLabel, 0)
	if err := s.db.WithContext(ctx).Preload("Destination").Order("created_at DESC").Find(&labels).Error; err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

func (s *gormStore) GetLabel(ctx context.Context, id int64) (*model.OLPNLabel, error) {
	var label model.OLPNLabel
	if err := first(s.db.WithContext(ctx).Preload("Destination"), &label, id); err != nil {
		return nil, err
	}
	return &label, nil
}

func (s *gormStore) CreateLabel(ctx context.Context, label *model.OLPNLabel) error {
	if label.Status == "" {
		label.Status = model.LabelStatusPending
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &model.OLPNLabel{}, "barcode", label.Barcode, 0); err != nil {
			return err
		}
		if err := ensureDestination(tx, label.DestinationCodeID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(label).Error; err != nil {
			return conflictOnDuplicate(err)
		}
		return first(tx.Preload("Destination"), label, label.ID)
	})
}

func (s *gormStore) UpdateLabel(ctx context.Context, label *model.OLPNLabel) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.OLPNLabel
		if err := first(tx, &existing, label.ID); err != nil {
			return err
		}
		if err := ensureUnique(tx, &model.OLPNLabel{}, "barcode", label.Barcode, label.ID); err != nil {
			return err
		}
		if err := ensureDestination(tx, label.DestinationCodeID); err != nil {
			return err
		}
		existing.Barcode = label.Barcode
		existing.DestinationCodeID = label.DestinationCodeID
		if label.Status == model.LabelStatusPending || label.Status == model.LabelStatusShipped {
			existing.Status = label.Status
		}
		if err := tx.Omit(clause.Associations).Save(&existing).Error; err != nil {
			return conflictOnDuplicate(err)
		}
		if err := first(tx.Preload("Destination"), &existing, existing.ID); err != nil {
			return err
		}
		*label = existing
		return nil
	})
}

func (s *gormStore) DeleteLabel(ctx context.Context, id int64) error {
	return deleteByID(s.db.WithContext(ctx), &model.OLPNLabel{}, id)
}

// --- Cameras ---

func (s *gormStore) ListCameras(ctx context.Context) ([]model.Camera, error) {
	cameras := make([]model.Camera, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&cameras).Error; err != nil {
		return nil, fmt.Errorf("failed to list cameras: %w", err)
	}
	return cameras, nil
}

func (s *gormStore) CreateCamera(ctx context.Context, camera *model.Camera) error {
	camera.URL = model.BuildStreamURL(camera.IPAddress, camera.Password)
	return s.db.WithContext(ctx).Create(camera).Error
}

func (s *gormStore) UpdateCamera(ctx context.Context, camera *model.Camera) error {
	camera.URL = model.BuildStreamURL(camera.IPAddress, camera.Password)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Camera
		if err := first(tx, &existing, camera.ID); err != nil {
			return err
		}
		// The scanning flag only changes through ToggleScanning.
		camera.Scanning = existing.Scanning
		return tx.Save(camera).Error
	})
}

func (s *gormStore) DeleteCamera(ctx context.Context, id int64) error {
	return deleteByID(s.db.WithContext(ctx), &model.Camera{}, id)
}

// ToggleScanning flips the camera's scanning flag and returns the new value.
func (s *gormStore) ToggleScanning(ctx context.Context, id int64) (bool, error) {
	var scanning bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var camera model.Camera
		if err := first(tx, &camera, id); err != nil {
			return err
		}
		scanning = !camera.Scanning
		return tx.Model(&camera).Update("scanning", scanning).Error
	})
	return scanning, err
}

// --- Helpers ---

func first(tx *gorm.DB, dest any, id int64) error {
	err := tx.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func deleteByID(tx *gorm.DB, m any, id int64) error {
	res := tx.Delete(m, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ensureUnique fails with ErrConflict when another row (id != exceptID) already
// holds value in column.
func ensureUnique(tx *gorm.DB, m any, column, value string, exceptID int64) error {
	var n int64
	if err := tx.Model(m).Where(column+" = ? AND id <> ?", value, exceptID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%s %q already exists: %w", column, value, ErrConflict)
	}
	return nil
}

func ensureDestination(tx *gorm.DB, id int64) error {
	var n int64
	if err := tx.Model(&model.DestinationCode{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("destination code %d: %w", id, ErrInvalidReference)
	}
	return nil
}

// conflictOnDuplicate reports a unique index violation as ErrConflict. It
// covers the race between ensureUnique and the write. Postgres errors arrive
// translated by GORM; the sqlite driver hands back the raw sqlite3 error.
func conflictOnDuplicate(err error) error {
	var sqliteErr sqlite3.Error
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		(errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {
		return fmt.Errorf("%v: %w", err, ErrConflict)
	}
	return err
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
