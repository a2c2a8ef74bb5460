// Package fixture is a deterministic, in-memory catalog backed by YAML. It is
// used for offline development and as the fixture catalog in tests.
package fixture

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reelfinder/reelfinder/internal/catalog"
)

//go:embed default.yaml
var defaultData []byte

type file struct {
	Titles []catalog.Detail `yaml:"titles"`
}

// Catalog serves searches and lookups from a fixed list of records.
type Catalog struct {
	entries []catalog.Detail
	byID    map[string]int
}

// New creates a catalog from records, keeping their order.
func New(entries []catalog.Detail) (*Catalog, error) {
	c := &Catalog{
		entries: make([]catalog.Detail, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("fixture entry %q has no id", e.Title)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate fixture id %q", e.ID)
		}
		c.byID[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Parse decodes a YAML fixture document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return New(f.Titles)
}

// Load reads a YAML fixture file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in fixture catalog.
func Default() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic("invalid built-in fixtures: " + err.Error())
	}
	return c
}

// Name returns the provider name.
func (c *Catalog) Name() string {
	return "fixture"
}

// IsConfigured always returns true.
func (c *Catalog) IsConfigured() bool {
	return true
}

// Test always succeeds unless ctx is done.
func (c *Catalog) Test(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Search matches query case-insensitively against titles and cast lists.
func (c *Catalog) Search(ctx context.Context, query string, filter catalog.TypeFilter) ([]catalog.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, catalog.ErrNoResults
	}

	var results []catalog.Result
	for _, e := range c.entries {
		if filter != catalog.FilterNone && !strings.EqualFold(e.Type, string(filter)) {
			continue
		}
		if !strings.Contains(strings.ToLower(e.Title), needle) && !strings.Contains(strings.ToLower(e.Cast), needle) {
			continue
		}
		results = append(results, catalog.Result{ID: e.ID, Title: e.Title, Year: e.Year, Type: e.Type})
	}

	if len(results) == 0 {
		return nil, catalog.ErrNoResults
	}
	return results, nil
}

// GetDetails returns a copy of the record for id.
func (c *Catalog) GetDetails(ctx context.Context, id string) (*catalog.Detail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, ok := c.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	d := c.entries[idx]
	return &d, nil
}
