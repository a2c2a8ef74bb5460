package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTypeFilter(t *testing.T) {
	assert.Equal(t, FilterMovie, ParseTypeFilter("movie"))
	assert.Equal(t, FilterSeries, ParseTypeFilter("series"))
	assert.Equal(t, FilterNone, ParseTypeFilter("Series"))
	assert.Equal(t, FilterNone, ParseTypeFilter("episode"))
	assert.Equal(t, FilterNone, ParseTypeFilter(""))
}

func TestDetail_TypeLabel(t *testing.T) {
	assert.Equal(t, "TV Series", Detail{Type: "series"}.TypeLabel())
	assert.Equal(t, "Movie", Detail{Type: "movie"}.TypeLabel())
	assert.Equal(t, "Movie", Detail{}.TypeLabel())
}
