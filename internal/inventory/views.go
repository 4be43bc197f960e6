package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"byebye/internal/services"
)

const viewColumns = "id, name, filter_json, created_at, updated_at"

func scanView(scanner interface{ Scan(dest ...any) error }) (*View, error) {
	var (
		view       View
		filterJSON string
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&view.ID, &view.Name, &filterJSON, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(filterJSON), &view.Filter); err != nil {
		return nil, fmt.Errorf("decode view %q filter: %w", view.Name, err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		view.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		view.UpdatedAt = updated
	}
	return &view, nil
}

// SaveView stores filter under name, replacing any view with the same name.
func (s *Store) SaveView(ctx context.Context, name string, filter Filter) (*View, error) {
	ctx = ensureContext(ctx)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "inventory", "save view", "name is required", nil)
	}
	if filter.Format != "" {
		format, err := ParseFormat(string(filter.Format))
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "inventory", "save view", err.Error(), nil)
		}
		filter.Format = format
	}
	payload, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode view filter: %w", err)
	}
	timestamp := formatTime(s.now())
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO views (name, filter_json, created_at, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET filter_json = excluded.filter_json, updated_at = excluded.updated_at`,
		name, string(payload), timestamp, timestamp,
	); err != nil {
		return nil, fmt.Errorf("save view: %w", err)
	}
	return s.GetViewByName(ctx, name)
}

// GetViewByName returns the named view, or nil, nil when it does not exist.
func (s *Store) GetViewByName(ctx context.Context, name string) (*View, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+viewColumns+` FROM views WHERE name = ?`, strings.TrimSpace(name))
	view, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get view: %w", err)
	}
	return view, nil
}

// ListViews returns all saved views ordered by name.
func (s *Store) ListViews(ctx context.Context) ([]*View, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+viewColumns+` FROM views ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	defer rows.Close()

	var views []*View
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// DeleteView removes a saved view by identifier.
func (s *Store) DeleteView(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM views WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete view: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
