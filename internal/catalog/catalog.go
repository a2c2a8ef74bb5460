// Package catalog defines the media catalog records shared by the catalog
// backends (OMDb and the YAML fixture catalog).
package catalog

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNoResults is the catalog's explicit "no match" answer to a search.
	ErrNoResults = errors.New("no results found")
	// ErrNotFound is the catalog's explicit "no match" answer to a detail lookup.
	ErrNotFound = errors.New("not found in catalog")
	// ErrAPIError wraps non-success responses from the catalog.
	ErrAPIError = errors.New("catalog API error")
)

// TypeFilter restricts a search to one kind of media. The zero value means
// no filter.
type TypeFilter string

const (
	FilterNone   TypeFilter = ""
	FilterMovie  TypeFilter = "movie"
	FilterSeries TypeFilter = "series"
)

// ParseTypeFilter returns the filter for s, or FilterNone when s is not
// exactly "movie" or "series".
func ParseTypeFilter(s string) TypeFilter {
	switch TypeFilter(s) {
	case FilterMovie, FilterSeries:
		return TypeFilter(s)
	default:
		return FilterNone
	}
}

// Result is a lightweight search summary.
type Result struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Year  string `json:"year" yaml:"year"`
	Type  string `json:"type,omitempty" yaml:"type"`
}

// Detail is the full record for one catalog entry.
type Detail struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Year      string   `json:"year" yaml:"year"`
	Type      string   `json:"type" yaml:"type"`
	Genre     string   `json:"genre" yaml:"genre"`
	Seasons   *int     `json:"seasons,omitempty" yaml:"seasons"`
	Rating    *float64 `json:"rating,omitempty" yaml:"rating"`
	Cast      string   `json:"cast" yaml:"cast"`
	Plot      string   `json:"plot" yaml:"plot"`
	PosterURL string   `json:"posterUrl,omitempty" yaml:"poster_url"`
}

// IsSeries reports whether the record is a TV series.
func (d Detail) IsSeries() bool {
	return strings.EqualFold(d.Type, string(FilterSeries))
}

// TypeLabel returns the display label for the record's content type.
func (d Detail) TypeLabel() string {
	if d.IsSeries() {
		return "TV Series"
	}
	return "Movie"
}

// Searcher is implemented by every catalog backend.
type Searcher interface {
	Search(ctx context.Context, query string, filter TypeFilter) ([]Result, error)
	GetDetails(ctx context.Context, id string) (*Detail, error)
}
