package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfinder/reelfinder/internal/config"
)

func completionHandler(t *testing.T, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func newTestClient(url string, opts ...Option) *Client {
	cfg := config.LLMConfig{
		APIKey:      "test-key",
		BaseURL:     url,
		Model:       "demo-model",
		Temperature: 0.7,
		Timeout:     5,
		MaxAttempts: 3,
	}
	opts = append([]Option{WithSleeper(func(time.Duration) {})}, opts...)
	return NewClient(cfg, zerolog.Nop(), opts...)
}

func TestClient_Complete(t *testing.T) {
	var got chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		completionHandler(t, `{"titles":["Dune"]}`)(w, r)
	}))
	defer server.Close()

	reply, err := newTestClient(server.URL).Complete(context.Background(), "find a desert movie")
	require.NoError(t, err)

	assert.Equal(t, `{"titles":["Dune"]}`, reply)
	assert.Equal(t, "demo-model", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "find a desert movie", got.Messages[0].Content)
}

func TestClient_Complete_MissingKey(t *testing.T) {
	client := NewClient(config.LLMConfig{}, zerolog.Nop())

	assert.False(t, client.IsConfigured())
	_, err := client.Complete(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestClient_Complete_Defaults(t *testing.T) {
	client := NewClient(config.LLMConfig{APIKey: "k"}, zerolog.Nop())

	assert.Equal(t, config.DefaultLLMModel, client.Model())
	assert.Equal(t, config.DefaultLLMBaseURL, client.cfg.BaseURL)
	assert.Equal(t, defaultRetryAttempts, client.retryMaxAttempts)
}

func TestClient_Complete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		completionHandler(t, "ok")(w, r)
	}))
	defer server.Close()

	var slept []time.Duration
	client := newTestClient(server.URL, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	reply, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestClient_Complete_RetryAfterHeader(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "4")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		completionHandler(t, "ok")(w, r)
	}))
	defer server.Close()

	var slept []time.Duration
	client := newTestClient(server.URL, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	_, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{4 * time.Second}, slept)
}

func TestClient_Complete_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "hello")
	require.Error(t, err)

	var statusErr *httpStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Complete_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		completionHandler(t, "   ")(w, r)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmptyReply)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Complete_APIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestClient_Test(t *testing.T) {
	var got chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		completionHandler(t, "ok")(w, r)
	}))
	defer server.Close()

	require.NoError(t, newTestClient(server.URL).Test(context.Background()))
	assert.Equal(t, "demo-model", got.Model)
	assert.Zero(t, got.Temperature)
}

func TestClient_Test_Failures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"Invalid API Key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	err := newTestClient(server.URL).Test(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 401")
	assert.EqualValues(t, 1, calls.Load())

	client := NewClient(config.LLMConfig{BaseURL: server.URL}, zerolog.Nop())
	assert.ErrorIs(t, client.Test(context.Background()), ErrAPIKeyMissing)
}

func TestParseRetryAfter(t *testing.T) {
	d, ok := parseRetryAfter("7")
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, d)

	_, ok = parseRetryAfter("")
	assert.False(t, ok)

	_, ok = parseRetryAfter("-1")
	assert.False(t, ok)
}

func TestBackoffDelayCapped(t *testing.T) {
	client := newTestClient("http://unused")

	assert.Equal(t, time.Second, client.backoffDelay(1))
	assert.Equal(t, 4*time.Second, client.backoffDelay(3))
	assert.Equal(t, 10*time.Second, client.backoffDelay(10))
}
