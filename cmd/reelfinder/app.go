package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reelfinder/reelfinder/internal/catalog"
	"github.com/reelfinder/reelfinder/internal/catalog/fixture"
	"github.com/reelfinder/reelfinder/internal/catalog/omdb"
	"github.com/reelfinder/reelfinder/internal/clues"
	"github.com/reelfinder/reelfinder/internal/config"
	"github.com/reelfinder/reelfinder/internal/finder"
	"github.com/reelfinder/reelfinder/internal/health"
	"github.com/reelfinder/reelfinder/internal/llm"
	"github.com/reelfinder/reelfinder/internal/startup"
)

// builtinFixtures selects the catalog bundled with the binary.
const builtinFixtures = "builtin"

type catalogBackend interface {
	catalog.Searcher
	Name() string
	IsConfigured() bool
	Test(ctx context.Context) error
}

// app is the search pipeline shared by the serve and lookup commands.
type app struct {
	llm      *llm.Client
	catalog  catalogBackend
	selector *finder.Selector
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	cat, err := openCatalog(cfg.Catalog, logger)
	if err != nil {
		return nil, err
	}

	model := llm.NewClient(cfg.LLM, logger)
	limits := finder.Limits{
		MaxMatches:      cfg.Search.MaxMatches,
		ResultsPerQuery: cfg.Search.ResultsPerQuery,
	}

	return &app{
		llm:      model,
		catalog:  cat,
		selector: finder.NewSelector(clues.NewExtractor(model, logger), cat, limits, logger),
	}, nil
}

// openCatalog picks OMDb unless a fixture file is configured.
func openCatalog(cfg config.CatalogConfig, logger zerolog.Logger) (catalogBackend, error) {
	switch path := strings.TrimSpace(cfg.FixturePath); path {
	case "":
		return omdb.NewClient(cfg, logger), nil
	case builtinFixtures:
		return fixture.Default(), nil
	default:
		c, err := fixture.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixtures: %w", err)
		}
		return c, nil
	}
}

// probes lists the upstreams checked when the server starts.
func (a *app) probes() []startup.Probe {
	model := startup.Probe{
		ID:    health.ItemLanguageModel,
		Name:  "llm " + a.llm.Model(),
		Check: a.llm.Test,
	}
	if !a.llm.IsConfigured() {
		model.Skip = "API key not configured"
	}

	cat := startup.Probe{
		ID:    health.ItemCatalog,
		Name:  a.catalog.Name(),
		Check: a.catalog.Test,
	}
	if !a.catalog.IsConfigured() {
		cat.Skip = "API key not configured"
	}

	return []startup.Probe{model, cat}
}
