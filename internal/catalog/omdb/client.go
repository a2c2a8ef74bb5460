package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/reelfinder/reelfinder/internal/catalog"
	"github.com/reelfinder/reelfinder/internal/config"
)

var ErrAPIKeyMissing = errors.New("OMDb API key is not configured")

const notAvailable = "N/A"

// Client is an OMDb API client.
type Client struct {
	httpClient *http.Client
	config     config.CatalogConfig
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new OMDb client.
func NewClient(cfg config.CatalogConfig, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultCatalogBaseURL
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		limiter:    limiter,
		logger:     logger.With().Str("component", "omdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "omdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies connectivity to the OMDb API.
func (c *Client) Test(ctx context.Context) error {
	_, err := c.GetDetails(ctx, "tt0133093") // The Matrix
	return err
}

// Search runs a keyword search, optionally restricted to movies or series.
// An explicit "no match" answer is reported as catalog.ErrNoResults.
func (c *Client) Search(ctx context.Context, query string, filter catalog.TypeFilter) ([]catalog.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, catalog.ErrNoResults
	}

	params := url.Values{}
	params.Set("s", query)
	if filter != catalog.FilterNone {
		params.Set("type", string(filter))
	}

	var searchResp SearchResponse
	if err := c.get(ctx, params, &searchResp); err != nil {
		c.logger.Error().Err(err).Str("query", query).Msg("search request failed")
		return nil, err
	}

	if searchResp.Response == "False" {
		if isNoMatch(searchResp.Error) {
			return nil, catalog.ErrNoResults
		}
		c.logger.Warn().Str("error", searchResp.Error).Str("query", query).Msg("OMDb API returned error")
		return nil, fmt.Errorf("%w: %s", catalog.ErrAPIError, searchResp.Error)
	}

	results := make([]catalog.Result, 0, len(searchResp.Search))
	for _, item := range searchResp.Search {
		if item.ImdbID == "" {
			continue
		}
		results = append(results, catalog.Result{
			ID:    item.ImdbID,
			Title: item.Title,
			Year:  item.Year,
			Type:  item.Type,
		})
	}

	c.logger.Debug().
		Str("query", query).
		Str("type", string(filter)).
		Int("results", len(results)).
		Msg("OMDb search complete")

	return results, nil
}

// GetDetails fetches the full record for an IMDb ID with a short plot.
func (c *Client) GetDetails(ctx context.Context, imdbID string) (*catalog.Detail, error) {
	if imdbID == "" {
		return nil, catalog.ErrNotFound
	}

	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("plot", "short")

	var omdbResp Response
	if err := c.get(ctx, params, &omdbResp); err != nil {
		c.logger.Error().Err(err).Str("imdbId", imdbID).Msg("detail request failed")
		return nil, err
	}

	if omdbResp.Response == "False" {
		if isNoMatch(omdbResp.Error) || omdbResp.Error == "Incorrect IMDb ID." {
			return nil, catalog.ErrNotFound
		}
		c.logger.Warn().Str("error", omdbResp.Error).Str("imdbId", imdbID).Msg("OMDb API returned error")
		return nil, fmt.Errorf("%w: %s", catalog.ErrAPIError, omdbResp.Error)
	}

	return normalizeDetail(omdbResp), nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("apikey", c.config.APIKey)
	reqURL := fmt.Sprintf("%s?%s", c.config.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", catalog.ErrAPIError, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func isNoMatch(msg string) bool {
	switch msg {
	case "Movie not found!", "Series not found!", "Episode not found!":
		return true
	default:
		return false
	}
}

// normalizeDetail converts an OMDb response to a catalog record.
func normalizeDetail(resp Response) *catalog.Detail {
	detail := &catalog.Detail{
		ID:    resp.ImdbID,
		Title: resp.Title,
		Year:  resp.Year,
		Type:  resp.Type,
		Genre: available(resp.Genre),
		Cast:  available(resp.Actors),
		Plot:  available(resp.Plot),
	}

	if poster := available(resp.Poster); poster != "" {
		detail.PosterURL = poster
	}

	if rating := available(resp.ImdbRating); rating != "" {
		if v, err := strconv.ParseFloat(rating, 64); err == nil {
			detail.Rating = &v
		}
	}

	if seasons := available(resp.TotalSeasons); seasons != "" {
		if v, err := strconv.Atoi(seasons); err == nil {
			detail.Seasons = &v
		}
	}

	return detail
}

func available(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}
