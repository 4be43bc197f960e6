package inventory

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, sku, title, artist, catalog_no, format, condition, notes, cost_jpy, release_id, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id         int64
		skuValue   string
		title      sql.NullString
		artist     sql.NullString
		catalogNo  sql.NullString
		format     sql.NullString
		condition  sql.NullString
		notes      sql.NullString
		costJPY    sql.NullInt64
		releaseID  sql.NullInt64
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&skuValue,
		&title,
		&artist,
		&catalogNo,
		&format,
		&condition,
		&notes,
		&costJPY,
		&releaseID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:        id,
		SKU:       skuValue,
		Title:     title.String,
		Artist:    artist.String,
		CatalogNo: catalogNo.String,
		Format:    Format(format.String),
		Condition: condition.String,
		Notes:     notes.String,
		CostJPY:   costJPY.Int64,
		ReleaseID: releaseID.Int64,
	}
	if item.Format == "" {
		item.Format = FormatOther
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

// escapeLike escapes LIKE wildcards for use with ESCAPE '\'.
func escapeLike(value string) string {
	out := make([]rune, 0, len(value))
	for _, r := range value {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
