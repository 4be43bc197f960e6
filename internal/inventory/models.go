package inventory

import (
	"fmt"
	"strings"
	"time"
)

// Format is the physical medium of an item.
type Format string

const (
	FormatRecord Format = "record"
	FormatCD     Format = "cd"
	FormatBook   Format = "book"
	FormatOther  Format = "other"
)

// ParseFormat normalizes a user-supplied format name. Empty input maps to FormatOther.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "record", "vinyl", "lp":
		return FormatRecord, nil
	case "cd":
		return FormatCD, nil
	case "book":
		return FormatBook, nil
	case "", "other":
		return FormatOther, nil
	default:
		return "", fmt.Errorf("unknown format %q (want record, cd, book, or other)", value)
	}
}

// Item is one physical piece of stock.
type Item struct {
	ID        int64     `json:"id" yaml:"id"`
	SKU       string    `json:"sku" yaml:"sku"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	Artist    string    `json:"artist,omitempty" yaml:"artist,omitempty"`
	CatalogNo string    `json:"catalogNo,omitempty" yaml:"catalog_no,omitempty"`
	Format    Format    `json:"format" yaml:"format"`
	Condition string    `json:"condition,omitempty" yaml:"condition,omitempty"`
	Notes     string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CostJPY   int64     `json:"costJpy,omitempty" yaml:"cost_jpy,omitempty"`
	ReleaseID int64     `json:"releaseId,omitempty" yaml:"release_id,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// DisplayName returns "Artist - Title", falling back to whichever part exists
// and finally the SKU.
func (i *Item) DisplayName() string {
	if i == nil {
		return ""
	}
	switch {
	case i.Artist != "" && i.Title != "":
		return i.Artist + " - " + i.Title
	case i.Title != "":
		return i.Title
	case i.Artist != "":
		return i.Artist
	default:
		return i.SKU
	}
}

// NewItem holds the caller-supplied fields of an item being created. The SKU
// is always allocated by the store.
type NewItem struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	CatalogNo string `json:"catalogNo"`
	Format    Format `json:"format"`
	Condition string `json:"condition"`
	Notes     string `json:"notes"`
	CostJPY   int64  `json:"costJpy"`
}

// Patch lists the fields UpdateFields should change. Nil fields are left as is;
// a pointer to "" clears the column.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Artist    *string `json:"artist,omitempty"`
	CatalogNo *string `json:"catalogNo,omitempty"`
	Format    *Format `json:"format,omitempty"`
	Condition *string `json:"condition,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	CostJPY   *int64  `json:"costJpy,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Artist == nil && p.CatalogNo == nil && p.Format == nil &&
		p.Condition == nil && p.Notes == nil && p.CostJPY == nil
}

// Filter narrows item listings. It is also the persisted body of a saved view.
// Unidentified selects items still missing a title or an artist.
type Filter struct {
	Text         string `json:"text,omitempty" yaml:"text,omitempty"`
	Format       Format `json:"format,omitempty" yaml:"format,omitempty"`
	Unidentified bool   `json:"unidentified,omitempty" yaml:"unidentified,omitempty"`
	Limit        int    `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// CaptureKind labels which side of an item a photo shows.
type CaptureKind string

const (
	CaptureCover CaptureKind = "cover"
	CaptureLabel CaptureKind = "label"
	CaptureBack  CaptureKind = "back"
	CaptureOther CaptureKind = "other"
)

// ParseCaptureKind normalizes a capture kind. Empty input maps to CaptureOther.
func ParseCaptureKind(value string) (CaptureKind, error) {
	switch kind := CaptureKind(strings.ToLower(strings.TrimSpace(value))); kind {
	case CaptureCover, CaptureLabel, CaptureBack, CaptureOther:
		return kind, nil
	case "":
		return CaptureOther, nil
	default:
		return "", fmt.Errorf("unknown capture kind %q (want cover, label, back, or other)", value)
	}
}

// Capture records where a photo of an item is stored.
type Capture struct {
	ID        int64       `json:"id" yaml:"id"`
	ItemID    int64       `json:"itemId" yaml:"item_id"`
	Path      string      `json:"path" yaml:"path"`
	Kind      CaptureKind `json:"kind" yaml:"kind"`
	CreatedAt time.Time   `json:"createdAt" yaml:"created_at"`
}

// View is a named, saved item filter.
type View struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Filter    Filter    `json:"filter" yaml:"filter"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}
