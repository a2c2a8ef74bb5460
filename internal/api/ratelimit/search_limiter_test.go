package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestSearchLimiter_AllowsBurstThenBlocks(t *testing.T) {
	l := NewSearchLimiter(2)
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	// Other clients have their own bucket.
	assert.True(t, l.Allow("5.6.7.8"))

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestSearchLimiter_Disabled(t *testing.T) {
	l := NewSearchLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("1.2.3.4"))
	}
}

func TestSearchLimiter_Cleanup(t *testing.T) {
	l := NewSearchLimiter(5)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("1.2.3.4")
	now = now.Add(idleBucketTTL + time.Second)
	l.Allow("5.6.7.8")
	l.Cleanup()

	assert.Len(t, l.ipBuckets, 1)
	assert.Contains(t, l.ipBuckets, "5.6.7.8")
}

func TestSearchLimiter_Middleware(t *testing.T) {
	l := NewSearchLimiter(1)
	e := echo.New()
	e.POST("/search", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, l.Middleware())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
