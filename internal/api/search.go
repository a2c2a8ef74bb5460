package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/reelfinder/reelfinder/internal/catalog"
	"github.com/reelfinder/reelfinder/internal/finder"
	"github.com/reelfinder/reelfinder/internal/websocket"
)

// Live search message types.
const (
	msgSearchStart      = "search:start"
	msgSearchDiagnostic = "search:diagnostic"
	msgSearchMatch      = "search:match"
	msgSearchDone       = "search:done"
	msgSearchError      = "search:error"
)

type searchRequest struct {
	Description string `json:"description"`
}

type diagnosticPayload struct {
	Line string `json:"line"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// apiSearch runs one search synchronously.
// POST /api/v1/search
func (s *Server) apiSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "description is required")
	}

	result := s.selector.FindMatches(c.Request().Context(), description, nil)
	return c.JSON(http.StatusOK, result)
}

// handleLiveSearch starts a search for one websocket client and streams its
// diagnostics and matches back to that client only. A client runs one search
// at a time; the search stops when the connection closes.
func (s *Server) handleLiveSearch(client *websocket.Client, payload json.RawMessage) {
	var req searchRequest
	if len(payload) == 0 || json.Unmarshal(payload, &req) != nil {
		_ = client.Send(msgSearchError, errorPayload{Error: "invalid search request"})
		return
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		_ = client.Send(msgSearchError, errorPayload{Error: "description is required"})
		return
	}
	if !client.TryAcquire() {
		_ = client.Send(msgSearchError, errorPayload{Error: "a search is already running"})
		return
	}
	if !s.limiter.Allow(client.IP()) {
		client.Release()
		_ = client.Send(msgSearchError, errorPayload{Error: "too many searches, please try again later"})
		return
	}

	go func() {
		sink := finder.SinkFuncs{
			OnMatch: func(d catalog.Detail) {
				_ = client.Send(msgSearchMatch, d)
			},
			OnDiagnostic: func(line string) {
				_ = client.Send(msgSearchDiagnostic, diagnosticPayload{Line: line})
			},
		}
		// The client may start its next search as soon as it sees search:done.
		result := func() finder.Result {
			defer client.Release()
			return s.selector.FindMatches(client.Context(), description, sink)
		}()
		if err := client.Send(msgSearchDone, result); err != nil {
			s.logger.Debug().Err(err).Msg("live search finished after client left")
		}
	}()
}
