package inventory

import (
	"context"
	"fmt"
	"strings"

	"byebye/internal/services"
)

// AddCapture records a photo path for an item.
func (s *Store) AddCapture(ctx context.Context, itemID int64, path string, kind CaptureKind) (*Capture, error) {
	ctx = ensureContext(ctx)
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrValidation, "inventory", "add capture", "path is required", nil)
	}
	kind, err := ParseCaptureKind(string(kind))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "inventory", "add capture", err.Error(), nil)
	}
	item, err := s.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "inventory", "add capture", fmt.Sprintf("item %d", itemID), nil)
	}

	now := s.now()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO captures (item_id, path, kind, created_at) VALUES (?, ?, ?, ?)`,
		itemID, path, kind, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert capture: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Capture{ID: id, ItemID: itemID, Path: path, Kind: kind, CreatedAt: now.UTC()}, nil
}

// ListCaptures returns an item's captures in the order they were added.
func (s *Store) ListCaptures(ctx context.Context, itemID int64) ([]*Capture, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, item_id, path, kind, created_at FROM captures WHERE item_id = ? ORDER BY id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		var (
			capture    Capture
			createdRaw string
		)
		if err := rows.Scan(&capture.ID, &capture.ItemID, &capture.Path, &capture.Kind, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			capture.CreatedAt = created
		}
		captures = append(captures, &capture)
	}
	return captures, rows.Err()
}

// DeleteCapture removes one capture record.
func (s *Store) DeleteCapture(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete capture: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
