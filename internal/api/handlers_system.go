package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reelfinder/reelfinder/internal/config"
	"github.com/reelfinder/reelfinder/internal/scheduler"
)

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	limits := s.selector.Limits()

	response := map[string]interface{}{
		"version":         config.Version,
		"startTime":       s.startTime.Format(time.RFC3339),
		"maxMatches":      limits.MaxMatches,
		"resultsPerQuery": limits.ResultsPerQuery,
		"activeSessions":  s.sessions.Len(),
		"liveClients":     s.hub.ClientCount(),
		"health":          s.health.GetSummary(),
	}
	if s.llm != nil {
		response["llmConfigured"] = s.llm.IsConfigured()
		response["llmModel"] = s.llm.Model()
	}
	if s.catalog != nil {
		response["catalog"] = s.catalog.Name()
		response["catalogConfigured"] = s.catalog.IsConfigured()
	}

	return c.JSON(http.StatusOK, response)
}

// listTasks returns the background maintenance tasks.
// GET /api/v1/tasks
func (s *Server) listTasks(c echo.Context) error {
	if s.scheduler == nil {
		return c.JSON(http.StatusOK, []scheduler.TaskInfo{})
	}
	return c.JSON(http.StatusOK, s.scheduler.ListTasks())
}

// runTask triggers a task outside its schedule.
// POST /api/v1/tasks/:id/run
func (s *Server) runTask(c echo.Context) error {
	if s.scheduler == nil {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}

	id := c.Param("id")
	err := s.scheduler.RunNow(id)
	switch {
	case errors.Is(err, scheduler.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	case errors.Is(err, scheduler.ErrTaskRunning):
		return echo.NewHTTPError(http.StatusConflict, "task is already running")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusAccepted, map[string]string{"id": id, "status": "started"})
}
