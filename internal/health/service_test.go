package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_StatusTransitions(t *testing.T) {
	s := NewService(zerolog.Nop())
	s.RegisterItem(ItemCatalog, "omdb", nil)

	assert.True(t, s.IsHealthy(ItemCatalog))

	s.SetError(ItemCatalog, "connection refused")
	item := s.GetItem(ItemCatalog)
	require.NotNil(t, item)
	assert.Equal(t, StatusError, item.Status)
	assert.Equal(t, "connection refused", item.Message)
	assert.NotNil(t, item.Timestamp)

	s.ClearStatus(ItemCatalog)
	item = s.GetItem(ItemCatalog)
	assert.Equal(t, StatusOK, item.Status)
	assert.Nil(t, item.Timestamp)
}

func TestService_UnknownItemIgnored(t *testing.T) {
	s := NewService(zerolog.Nop())
	s.SetError("nope", "boom")
	assert.Nil(t, s.GetItem("nope"))
	assert.False(t, s.IsHealthy("nope"))
}

func TestService_Summary(t *testing.T) {
	s := NewService(zerolog.Nop())
	s.RegisterItem(ItemCatalog, "omdb", nil)
	s.RegisterItem(ItemLanguageModel, "llm", nil)

	assert.False(t, s.GetSummary().HasIssues)

	s.SetWarning(ItemLanguageModel, "API key not configured")
	summary := s.GetSummary()
	assert.Equal(t, HealthSummary{OK: 1, Warning: 1, HasIssues: true}, summary)
}

func TestService_Check(t *testing.T) {
	s := NewService(zerolog.Nop())
	fail := true
	s.RegisterItem(ItemCatalog, "omdb", func(context.Context) error {
		if fail {
			return errors.New("dial tcp: no such host")
		}
		return nil
	})

	res, ok := s.Check(context.Background(), ItemCatalog)
	require.True(t, ok)
	assert.False(t, res.Success)
	assert.Equal(t, StatusError, s.GetItem(ItemCatalog).Status)

	fail = false
	res, _ = s.Check(context.Background(), ItemCatalog)
	assert.True(t, res.Success)
	assert.True(t, s.IsHealthy(ItemCatalog))

	_, ok = s.Check(context.Background(), "missing")
	assert.False(t, ok)
}

func TestHealthItem_MarshalOmitsDetailsWhenOK(t *testing.T) {
	data, err := json.Marshal(HealthItem{ID: "catalog", Name: "omdb", Status: StatusOK, Message: "stale"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"catalog","name":"omdb","status":"ok"}`, string(data))
}

func TestHandlers(t *testing.T) {
	s := NewService(zerolog.Nop())
	s.RegisterItem(ItemCatalog, "fixture", func(context.Context) error { return nil })
	s.RegisterItem(ItemLanguageModel, "llm", nil)
	s.SetWarning(ItemLanguageModel, "API key not configured")

	e := echo.New()
	NewHandlers(s).RegisterRoutes(e.Group("/api/v1/health"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var items []HealthItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, ItemCatalog, items[0].ID)
	assert.Equal(t, StatusWarning, items[1].Status)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/health/catalog/test", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var res TestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/health/other/test", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
