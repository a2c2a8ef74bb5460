package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apimw "github.com/reelfinder/reelfinder/internal/api/middleware"
	"github.com/reelfinder/reelfinder/internal/health"
)

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestID())

	// Security headers
	s.echo.Use(apimw.SecurityHeaders())

	// Request body size limit
	s.echo.Use(middleware.BodyLimit("64K"))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("requestId", v.RequestID).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("requestId", v.RequestID).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures the page flow, the JSON API and the live stream.
func (s *Server) setupRoutes() {
	limited := s.limiter.Middleware()

	s.echo.GET("/", s.index)
	s.echo.POST("/search", s.submitDescription, limited)
	s.echo.POST("/reset", s.reset)
	s.echo.POST("/retry", s.retry)

	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)
	api.POST("/search", s.apiSearch, limited)
	health.NewHandlers(s.health).RegisterRoutes(api.Group("/health"))
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks/:id/run", s.runTask)

	s.hub.Handle(msgSearchStart, s.handleLiveSearch)
	s.echo.GET("/ws", s.hub.HandleWebSocket)
}
