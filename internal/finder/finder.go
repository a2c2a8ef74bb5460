// Package finder selects the best catalog matches for a vague description.
//
// FindMatches asks the clue extractor for candidate titles and actors, searches
// the catalog for each of them in order, and emits up to MaxMatches distinct
// records. Titles are searched first; actors only when titles did not fill the
// quota. Catalog failures never abort a search: each failed call becomes one
// diagnostic line and counts as zero results.
package finder

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/reelfinder/reelfinder/internal/catalog"
	"github.com/reelfinder/reelfinder/internal/clues"
)

const (
	DefaultMaxMatches      = 3
	DefaultResultsPerQuery = 3

	NoResultsMessage = "Sorry, no matching movies or TV shows found. Try providing more details or different keywords."
)

// ClueExtractor infers search hints from free text.
type ClueExtractor interface {
	Extract(ctx context.Context, description string) (clues.MediaClue, []string)
}

// Limits caps the size of a search. The two limits are independent.
type Limits struct {
	// MaxMatches is the total number of records a search may return.
	MaxMatches int
	// ResultsPerQuery is how many raw catalog results are considered per
	// title or actor query.
	ResultsPerQuery int
}

// DefaultLimits returns the standard limits (3 and 3).
func DefaultLimits() Limits {
	return Limits{MaxMatches: DefaultMaxMatches, ResultsPerQuery: DefaultResultsPerQuery}
}

// Result is the outcome of one search.
type Result struct {
	Clues       clues.MediaClue  `json:"clues"`
	Matches     []catalog.Detail `json:"matches"`
	Diagnostics []string         `json:"diagnostics"`
}

// Selector runs searches.
type Selector struct {
	extractor ClueExtractor
	catalog   catalog.Searcher
	limits    Limits
	logger    zerolog.Logger
}

// NewSelector creates a selector. Non-positive limits fall back to defaults.
func NewSelector(extractor ClueExtractor, searcher catalog.Searcher, limits Limits, logger zerolog.Logger) *Selector {
	if limits.MaxMatches <= 0 {
		limits.MaxMatches = DefaultMaxMatches
	}
	if limits.ResultsPerQuery <= 0 {
		limits.ResultsPerQuery = DefaultResultsPerQuery
	}
	return &Selector{
		extractor: extractor,
		catalog:   searcher,
		limits:    limits,
		logger:    logger.With().Str("component", "finder").Logger(),
	}
}

// Limits returns the selector's limits.
func (s *Selector) Limits() Limits {
	return s.limits
}

// search holds the state of one FindMatches call.
type search struct {
	*Selector
	sink    Sink
	filter  catalog.TypeFilter
	seen    map[string]bool
	fetched int
	result  Result
	stopped bool
}

// FindMatches runs the whole selection for description. Every match and
// diagnostic is passed to sink as soon as it is produced and is also
// collected in the returned Result. A nil sink is allowed.
func (s *Selector) FindMatches(ctx context.Context, description string, sink Sink) Result {
	if sink == nil {
		sink = NopSink{}
	}
	run := &search{
		Selector: s,
		sink:     sink,
		seen:     make(map[string]bool),
		result: Result{
			Matches:     []catalog.Detail{},
			Diagnostics: []string{},
		},
	}

	run.diagnostic("🔍 Analyzing your description...")
	clue, diags := s.extractor.Extract(ctx, description)
	for _, line := range diags {
		run.diagnostic(line)
	}
	run.result.Clues = clue

	run.filter = catalog.ParseTypeFilter(string(clue.Type))
	run.diagnostic(fmt.Sprintf("🎬 Looking for %s matching: %q", lookingFor(run.filter), clue.Titles))

	for _, title := range clue.Titles {
		if run.done(ctx) {
			break
		}
		run.query(ctx, title)
	}

	for _, actor := range clue.Actors {
		if run.done(ctx) {
			break
		}
		run.query(ctx, actor)
	}

	if len(run.result.Matches) == 0 {
		run.diagnostic(NoResultsMessage)
	}

	s.logger.Info().
		Int("matches", len(run.result.Matches)).
		Int("titles", len(clue.Titles)).
		Int("actors", len(clue.Actors)).
		Str("type", string(clue.Type)).
		Msg("search complete")

	return run.result
}

// done reports whether the detail quota is used up or the context has ended.
// Every detail fetch uses the quota, including failed ones.
func (r *search) done(ctx context.Context) bool {
	if r.stopped || r.fetched >= r.limits.MaxMatches {
		return true
	}
	if err := ctx.Err(); err != nil {
		r.stopped = true
		r.diagnostic(fmt.Sprintf("Search stopped: %v", err))
		return true
	}
	return false
}

// query searches the catalog for one title or actor name and emits the new
// matches among its first ResultsPerQuery results.
func (r *search) query(ctx context.Context, q string) {
	results, err := r.catalog.Search(ctx, q, r.filter)
	if err != nil {
		if errors.Is(err, catalog.ErrNoResults) {
			r.diagnostic(fmt.Sprintf("No results found for query: %s", q))
		} else {
			r.diagnostic(fmt.Sprintf("Error searching catalog for %q: %v", q, err))
		}
		return
	}

	if len(results) > r.limits.ResultsPerQuery {
		results = results[:r.limits.ResultsPerQuery]
	}

	for _, res := range results {
		if r.done(ctx) {
			return
		}
		if r.seen[res.ID] {
			continue
		}
		r.seen[res.ID] = true
		r.fetched++

		detail, err := r.catalog.GetDetails(ctx, res.ID)
		if err != nil {
			r.diagnostic(fmt.Sprintf("Error getting media details for %s: %v", res.ID, err))
			continue
		}

		r.result.Matches = append(r.result.Matches, *detail)
		r.sink.Match(*detail)
		r.logger.Debug().Str("id", detail.ID).Str("title", detail.Title).Str("query", q).Msg("match found")
	}
}

func (r *search) diagnostic(line string) {
	r.result.Diagnostics = append(r.result.Diagnostics, line)
	r.sink.Diagnostic(line)
	r.logger.Info().Str("diagnostic", line).Msg("search progress")
}

func lookingFor(filter catalog.TypeFilter) string {
	switch filter {
	case catalog.FilterSeries:
		return "TV series"
	case catalog.FilterMovie:
		return "movies"
	default:
		return "content"
	}
}
