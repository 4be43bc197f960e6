package catalog

import "strings"

const titleSeparator = " - "

// Candidate is one possible identification of an item.
type Candidate struct {
	ReleaseID    int64  `json:"releaseId,omitempty" yaml:"release_id,omitempty"`
	Title        string `json:"title" yaml:"title"`
	Artist       string `json:"artist" yaml:"artist"`
	CatalogNo    string `json:"catalogNo" yaml:"catalog_no"`
	Year         string `json:"year,omitempty" yaml:"year,omitempty"`
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
	Format       string `json:"format,omitempty" yaml:"format,omitempty"`
	ResourceURL  string `json:"resourceUrl,omitempty" yaml:"resource_url,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty" yaml:"thumbnail_url,omitempty"`
}

// Query holds the search fields. At least one must be non-blank.
type Query struct {
	CatalogNo string `json:"catalogNo,omitempty"`
	Query     string `json:"query,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Title     string `json:"title,omitempty"`
}

// Normalize trims every field.
func (q Query) Normalize() Query {
	return Query{
		CatalogNo: strings.TrimSpace(q.CatalogNo),
		Query:     strings.TrimSpace(q.Query),
		Artist:    strings.TrimSpace(q.Artist),
		Title:     strings.TrimSpace(q.Title),
	}
}

// Empty reports whether no field carries a value.
func (q Query) Empty() bool {
	n := q.Normalize()
	return n.CatalogNo == "" && n.Query == "" && n.Artist == "" && n.Title == ""
}

// SplitTitle splits Discogs' combined "Artist - Title" on the first separator.
// Without a separator the whole string is the title and the artist is empty.
func SplitTitle(raw string) (artist, title string) {
	before, after, found := strings.Cut(raw, titleSeparator)
	if !found {
		return "", raw
	}
	return before, after
}
