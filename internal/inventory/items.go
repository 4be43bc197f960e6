package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"byebye/internal/services"
	"byebye/internal/sku"
)

// GreatestSKU returns the greatest SKU matching a GLOB pattern, or "".
func (s *Store) GreatestSKU(ctx context.Context, pattern string) (string, error) {
	return greatestSKU(ensureContext(ctx), s.db, pattern)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func greatestSKU(ctx context.Context, q queryRower, pattern string) (string, error) {
	var greatest sql.NullString
	err := q.QueryRowContext(ctx, `SELECT MAX(sku) FROM items WHERE sku GLOB ?`, pattern).Scan(&greatest)
	if err != nil {
		return "", fmt.Errorf("select greatest sku: %w", err)
	}
	return greatest.String, nil
}

type txSource struct{ tx *sql.Tx }

func (t txSource) GreatestSKU(ctx context.Context, pattern string) (string, error) {
	return greatestSKU(ctx, t.tx, pattern)
}

// CreateItem allocates the next SKU for today and inserts the item.
func (s *Store) CreateItem(ctx context.Context, in NewItem) (*Item, error) {
	ctx = ensureContext(ctx)
	format, err := ParseFormat(string(in.Format))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "inventory", "create item", err.Error(), nil)
	}
	if in.CostJPY < 0 {
		return nil, services.Wrap(services.ErrValidation, "inventory", "create item", "cost must not be negative", nil)
	}
	in.Format = format

	var lastErr error
	for attempt := 0; attempt < skuConflictAttempts; attempt++ {
		var id int64
		err := retryOnBusy(ctx, func() error {
			var insertErr error
			id, insertErr = s.insertWithSKU(ctx, in)
			return insertErr
		})
		if err == nil {
			return s.GetByID(ctx, id)
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("insert item: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("insert item: sku conflict after %d attempts: %w", skuConflictAttempts, lastErr)
}

func (s *Store) insertWithSKU(ctx context.Context, in NewItem) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	code, err := sku.Allocate(ctx, txSource{tx: tx}, s.skuPrefix, now)
	if err != nil {
		return 0, err
	}
	timestamp := formatTime(now)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO items (
            sku, title, artist, catalog_no, format, condition, notes, cost_jpy, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code,
		nullableString(strings.TrimSpace(in.Title)),
		nullableString(strings.TrimSpace(in.Artist)),
		nullableString(strings.TrimSpace(in.CatalogNo)),
		in.Format,
		nullableString(strings.TrimSpace(in.Condition)),
		nullableString(strings.TrimSpace(in.Notes)),
		nullableInt(in.CostJPY),
		timestamp,
		timestamp,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID fetches an item by identifier. A missing item yields nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetBySKU fetches an item by SKU. A missing item yields nil, nil.
func (s *Store) GetBySKU(ctx context.Context, code string) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+itemColumns+` FROM items WHERE sku = ?`, strings.TrimSpace(code))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item by sku: %w", err)
	}
	return item, nil
}

// ListByIDs returns the items for ids in the order given. Unknown ids are skipped.
func (s *Store) ListByIDs(ctx context.Context, ids []int64) ([]*Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+itemColumns+` FROM items WHERE id IN (`+makePlaceholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("list items by id: %w", err)
	}
	found, err := collectItems(rows)
	if err != nil {
		return nil, fmt.Errorf("list items by id: %w", err)
	}
	byID := make(map[int64]*Item, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}
	ordered := make([]*Item, 0, len(found))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered, nil
}

// List returns items matching filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Item, error) {
	var (
		clauses []string
		args    []any
	)
	if text := strings.TrimSpace(filter.Text); text != "" {
		like := "%" + escapeLike(text) + "%"
		clauses = append(clauses, `(sku LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\' OR artist LIKE ? ESCAPE '\' OR catalog_no LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like, like)
	}
	if filter.Format != "" {
		clauses = append(clauses, `format = ?`)
		args = append(args, filter.Format)
	}
	if filter.Unidentified {
		clauses = append(clauses, `(title IS NULL OR artist IS NULL)`)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// UpdateFields applies patch to the item and returns the updated record.
func (s *Store) UpdateFields(ctx context.Context, id int64, patch Patch) (*Item, error) {
	ctx = ensureContext(ctx)
	if patch.Empty() {
		item, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, services.Wrap(services.ErrNotFound, "inventory", "update item", fmt.Sprintf("item %d", id), nil)
		}
		return item, nil
	}

	var (
		sets []string
		args []any
	)
	addText := func(column string, value *string) {
		if value == nil {
			return
		}
		sets = append(sets, column+` = ?`)
		args = append(args, nullableString(strings.TrimSpace(*value)))
	}
	addText("title", patch.Title)
	addText("artist", patch.Artist)
	addText("catalog_no", patch.CatalogNo)
	addText("condition", patch.Condition)
	addText("notes", patch.Notes)
	if patch.Format != nil {
		format, err := ParseFormat(string(*patch.Format))
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "inventory", "update item", err.Error(), nil)
		}
		sets = append(sets, `format = ?`)
		args = append(args, format)
	}
	if patch.CostJPY != nil {
		if *patch.CostJPY < 0 {
			return nil, services.Wrap(services.ErrValidation, "inventory", "update item", "cost must not be negative", nil)
		}
		sets = append(sets, `cost_jpy = ?`)
		args = append(args, nullableInt(*patch.CostJPY))
	}
	sets = append(sets, `updated_at = ?`)
	args = append(args, formatTime(s.now()), id)

	res, err := s.execWithRetry(ctx, `UPDATE items SET `+strings.Join(sets, `, `)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, services.Wrap(services.ErrNotFound, "inventory", "update item", fmt.Sprintf("item %d", id), nil)
	}
	return s.GetByID(ctx, id)
}

// SetReleaseID remembers the catalog release an item was matched to. Zero clears it.
func (s *Store) SetReleaseID(ctx context.Context, id, releaseID int64) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE items SET release_id = ?, updated_at = ? WHERE id = ?`,
		nullableInt(releaseID), formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("set release id: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return services.Wrap(services.ErrNotFound, "inventory", "set release id", fmt.Sprintf("item %d", id), nil)
	}
	return nil
}

// Delete removes an item and its captures.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
