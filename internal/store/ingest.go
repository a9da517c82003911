package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wareeye/internal/model"
	"wareeye/internal/validation"
)

// IngestScan persists scan and applies the dock-door rule transactionally.
func (s *gormStore) IngestScan(ctx context.Context, scan *model.Scan, rule *validation.Rule) (*IngestResult, error) {
	if scan.Timestamp.IsZero() {
		scan.Timestamp = time.Now().UTC()
	}

	result := &IngestResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(scan).Error; err != nil {
			return fmt.Errorf("failed to insert scan: %w", err)
		}
		result.ScanID = scan.ID

		if rule == nil || !rule.Applies(scan.Area) {
			return nil
		}

		dock, err := findDockDoor(tx, scan.Area)
		if err != nil {
			return err
		}
		// In lookup mode an area only counts as a dock door when the door exists.
		if dock == nil && rule.Mode() == validation.MatchLookup {
			return nil
		}

		label, err := findLabelForUpdate(tx, scan.Barcode)
		if err != nil {
			return err
		}

		verdict := rule.Evaluate(dock, label)
		result.Checked = true
		result.Valid = verdict.Valid
		result.Reason = verdict.Reason
		result.DockDoor = dock
		result.Label = label

		if verdict.Transition {
			shipped, err := shipLabel(tx, label, time.Now().UTC())
			if err != nil {
				return err
			}
			result.Transitioned = shipped
			if !shipped {
				result.Reason = validation.ReasonAlreadyShipped
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func findDockDoor(tx *gorm.DB, name string) (*model.DockDoor, error) {
	var dock model.DockDoor
	err := tx.Where("name = ?", name).First(&dock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up dock door %q: %w", name, err)
	}
	return &dock, nil
}

// findLabelForUpdate loads the label by barcode, locking the row where the
// dialect supports it so concurrent scans of one label serialise.
func findLabelForUpdate(tx *gorm.DB, barcode string) (*model.OLPNLabel, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var label model.OLPNLabel
	err := q.Where("barcode = ?", barcode).First(&label).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up label %q: %w", barcode, err)
	}
	return &label, nil
}

// shipLabel moves label from pending to shipped. The status guard makes the
// transition apply at most once; it reports whether this call applied it.
func shipLabel(tx *gorm.DB, label *model.OLPNLabel, now time.Time) (bool, error) {
	res := tx.Model(&model.OLPNLabel{}).
		Where("id = ? AND status = ?", label.ID, model.LabelStatusPending).
		Updates(map[string]any{"status": model.LabelStatusShipped, "updated_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("failed to ship label %q: %w", label.Barcode, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	label.Status = model.LabelStatusShipped
	label.UpdatedAt = now
	return true, nil
}
