package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for health endpoints.
type Handlers struct {
	health *Service
}

// NewHandlers creates new health handlers.
func NewHandlers(health *Service) *Handlers {
	return &Handlers{health: health}
}

// RegisterRoutes registers health routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAll)
	g.GET("/summary", h.GetSummary)
	g.POST("/:id/test", h.TestItem)
}

// GetAll returns all health items.
// GET /api/v1/health
func (h *Handlers) GetAll(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.GetAll())
}

// GetSummary returns status counts.
// GET /api/v1/health/summary
func (h *Handlers) GetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.GetSummary())
}

// TestItem re-runs the check for one item.
// POST /api/v1/health/:id/test
func (h *Handlers) TestItem(c echo.Context) error {
	result, ok := h.health.Check(c.Request().Context(), c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "health item not found")
	}
	return c.JSON(http.StatusOK, result)
}
