package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfinder/reelfinder/internal/catalog"
)

func TestDefault_Loads(t *testing.T) {
	c := Default()
	assert.Equal(t, "fixture", c.Name())
	assert.Positive(t, c.Len())
}

func TestSearch_GameOfThronesSeries(t *testing.T) {
	results, err := Default().Search(context.Background(), "Game of Thrones", catalog.FilterSeries)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "tt0944947", results[0].ID)
}

func TestSearch_TypeFilterExcludes(t *testing.T) {
	_, err := Default().Search(context.Background(), "Game of Thrones", catalog.FilterMovie)
	assert.ErrorIs(t, err, catalog.ErrNoResults)
}

func TestSearch_MatchesCast(t *testing.T) {
	results, err := Default().Search(context.Background(), "keanu reeves", catalog.FilterNone)
	require.NoError(t, err)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"tt0133093", "tt0234215", "tt2911666"}, ids)
}

func TestSearch_Deterministic(t *testing.T) {
	c := Default()
	first, err := c.Search(context.Background(), "dune", catalog.FilterMovie)
	require.NoError(t, err)
	second, err := c.Search(context.Background(), "dune", catalog.FilterMovie)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestSearch_BlankQuery(t *testing.T) {
	_, err := Default().Search(context.Background(), "  ", catalog.FilterNone)
	assert.ErrorIs(t, err, catalog.ErrNoResults)
}

func TestSearch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Default().Search(ctx, "dune", catalog.FilterNone)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetDetails(t *testing.T) {
	c := Default()

	detail, err := c.GetDetails(context.Background(), "tt0944947")
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", detail.Title)
	require.NotNil(t, detail.Seasons)
	assert.Equal(t, 8, *detail.Seasons)
	require.NotNil(t, detail.Rating)
	assert.InDelta(t, 9.2, *detail.Rating, 0.001)

	_, err = c.GetDetails(context.Background(), "tt9999999")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	content := `
titles:
  - id: tt1
    title: Alpha
    year: "2001"
    type: movie
  - id: tt2
    title: Alpha Returns
    year: "2004"
    type: movie
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "alpha", catalog.FilterNone)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "tt1", results[0].ID)
	assert.Equal(t, "tt2", results[1].ID)
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	_, err := Parse([]byte("titles:\n  - id: tt1\n    title: A\n  - id: tt1\n    title: B\n"))
	assert.Error(t, err)
}

func TestParse_RejectsMissingID(t *testing.T) {
	_, err := Parse([]byte("titles:\n  - title: A\n"))
	assert.Error(t, err)
}
