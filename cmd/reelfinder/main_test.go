package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfinder/reelfinder/internal/catalog"
	"github.com/reelfinder/reelfinder/internal/config"
	"github.com/reelfinder/reelfinder/internal/finder"
	"github.com/reelfinder/reelfinder/internal/health"
	"github.com/reelfinder/reelfinder/internal/startup"
)

// fakeLLM serves chat completions that always answer with reply.
func fakeLLM(t *testing.T, reply string) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}, "finish_reason": "stop"},
			},
		})
	}))
	t.Cleanup(srv.Close)

	t.Chdir(t.TempDir())
	t.Setenv("REELFINDER_LLM_BASE_URL", srv.URL)
	t.Setenv("REELFINDER_LLM_API_KEY", "test-key")
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLookup_BuiltinFixtures(t *testing.T) {
	fakeLLM(t, "```json\n{\"titles\": [\"Game of Thrones\"], \"actors\": [], \"genres\": [\"Fantasy\"], \"type\": \"series\"}\n```")

	stdout, _, err := runCLI(t, "--fixtures", "builtin", "lookup", "a show about dragons and kings fighting for a throne")
	require.NoError(t, err)

	assert.Contains(t, stdout, "🔍 Analyzing your description...")
	assert.Contains(t, stdout, `🎬 Looking for TV series matching: ["Game of Thrones"]`)
	assert.Contains(t, stdout, "╭")
	assert.Contains(t, stdout, "Game of Thrones")
	assert.Contains(t, stdout, "tt0944947")
	assert.Contains(t, stdout, "9.2/10")
}

func TestLookup_NoMatchesStillSucceeds(t *testing.T) {
	fakeLLM(t, `{"titles": [], "actors": [], "genres": [], "type": "movie"}`)

	stdout, _, err := runCLI(t, "--fixtures", "builtin", "lookup", "nothing", "at", "all")
	require.NoError(t, err)

	assert.Contains(t, stdout, finder.NoResultsMessage)
	assert.NotContains(t, stdout, "╭")
}

func TestLookup_FixtureFile(t *testing.T) {
	fakeLLM(t, `{"titles": ["Heat"], "actors": [], "genres": [], "type": "movie"}`)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`titles:
  - id: tt0113277
    title: Heat
    year: "1995"
    type: movie
    rating: 8.3
    cast: Al Pacino, Robert De Niro
`), 0o644))

	stdout, _, err := runCLI(t, "lookup", "--fixtures", path, "bank robbers in LA")
	require.NoError(t, err)
	assert.Contains(t, stdout, "tt0113277")
}

func TestLookup_MissingFixtureFile(t *testing.T) {
	fakeLLM(t, `{}`)

	_, _, err := runCLI(t, "--fixtures", filepath.Join(t.TempDir(), "missing.yaml"), "lookup", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load fixtures")
}

func TestLookup_RequiresDescription(t *testing.T) {
	fakeLLM(t, `{}`)

	_, _, err := runCLI(t, "lookup")
	assert.Error(t, err)

	_, _, err = runCLI(t, "lookup", "   ")
	assert.EqualError(t, err, "description is required")
}

func TestOpenCatalog(t *testing.T) {
	cat, err := openCatalog(config.CatalogConfig{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "omdb", cat.Name())
	assert.False(t, cat.IsConfigured())

	cat, err = openCatalog(config.CatalogConfig{FixturePath: builtinFixtures}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "fixture", cat.Name())
}

func TestApp_Probes(t *testing.T) {
	a, err := newApp(config.Default(), zerolog.Nop())
	require.NoError(t, err)

	probes := a.probes()
	require.Len(t, probes, 2)
	assert.Equal(t, health.ItemLanguageModel, probes[0].ID)
	assert.Equal(t, "API key not configured", probes[0].Skip)
	assert.Equal(t, health.ItemCatalog, probes[1].ID)
	assert.Equal(t, "API key not configured", probes[1].Skip)
}

func TestApp_LanguageModelProbeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid API Key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.LLM.APIKey = "revoked"
	cfg.LLM.BaseURL = srv.URL
	cfg.Catalog.FixturePath = builtinFixtures

	a, err := newApp(cfg, zerolog.Nop())
	require.NoError(t, err)

	svc := health.NewService(zerolog.Nop())
	retry := startup.RetryConfig{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, MaxAttempts: 1, Multiplier: 2}
	startup.ProbeDependencies(context.Background(), svc, retry, zerolog.Nop(), a.probes()...)

	item := svc.GetItem(health.ItemLanguageModel)
	require.NotNil(t, item)
	assert.Equal(t, health.StatusError, item.Status)
	assert.Contains(t, item.Message, "http 401")

	result, ok := svc.Check(context.Background(), health.ItemLanguageModel)
	require.True(t, ok)
	assert.False(t, result.Success)

	assert.Equal(t, health.StatusOK, svc.GetItem(health.ItemCatalog).Status)
}

func TestRenderMatches(t *testing.T) {
	seasons := 5
	rating := 9.5
	out := renderMatches([]catalog.Detail{
		{ID: "tt0903747", Title: "Breaking Bad", Year: "2008–2013", Type: "series", Seasons: &seasons, Rating: &rating,
			Cast: "Bryan Cranston, Aaron Paul", Plot: "A high school chemistry teacher turns to making meth."},
		{ID: "tt0133093", Title: "The Matrix", Year: "1999", Type: "movie"},
	})

	assert.Contains(t, out, "Breaking Bad")
	assert.Contains(t, out, "TV Series")
	assert.Contains(t, out, "9.5/10")
	assert.Contains(t, out, "Movie")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "IMDB ID")
	assert.Contains(t, out, "1. Breaking Bad\n   Cast: Bryan Cranston, Aaron Paul\n   A high school chemistry teacher turns to making meth.")
	assert.NotContains(t, out, "2. The Matrix")
}
