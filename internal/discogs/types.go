package discogs

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Text decodes a JSON string or number into a string. Discogs returns some
// fields, such as year, as either.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n == "0" {
		*t = ""
		return nil
	}
	*t = Text(n.String())
	return nil
}

// SearchParams holds the database search filters. Empty fields are omitted.
type SearchParams struct {
	CatalogNo string
	Query     string
	Artist    string
	Title     string
}

// SearchResult is one entry of a database search.
type SearchResult struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	CatNo       string   `json:"catno"`
	Year        Text     `json:"year"`
	Label       []string `json:"label"`
	Format      []string `json:"format"`
	Country     string   `json:"country"`
	ResourceURL string   `json:"resource_url"`
	Thumb       string   `json:"thumb"`
	CoverImage  string   `json:"cover_image"`
}

// SearchResponse models the paginated database search payload.
type SearchResponse struct {
	Pagination struct {
		Page    int `json:"page"`
		Pages   int `json:"pages"`
		PerPage int `json:"per_page"`
		Items   int `json:"items"`
	} `json:"pagination"`
	Results []SearchResult `json:"results"`
}

// Rating is the community rating block of a release.
type Rating struct {
	Count   int      `json:"count"`
	Average *float64 `json:"average"`
}

// Community is the want/have block of a release.
type Community struct {
	Want   *int   `json:"want"`
	Have   *int   `json:"have"`
	Rating Rating `json:"rating"`
}

// Release is the subset of /releases/{id} the price quote consumes.
type Release struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Year        Text      `json:"year"`
	Released    string    `json:"released"`
	NumForSale  *int      `json:"num_for_sale"`
	LowestPrice *float64  `json:"lowest_price"`
	Community   Community `json:"community"`
	URI         string    `json:"uri"`
}

// ReleaseStats is the /releases/{id}/stats payload.
type ReleaseStats struct {
	NumHave  *int    `json:"num_have"`
	NumWant  *int    `json:"num_want"`
	LastSold *string `json:"last_sold"`
}

// Price is a currency-tagged amount as returned by the marketplace API.
type Price struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// PriceSuggestions maps a media condition (e.g. "Very Good Plus (VG+)") to a
// suggested price.
type PriceSuggestions map[string]Price

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
