package api

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/reelfinder/reelfinder/internal/api/ratelimit"
	"github.com/reelfinder/reelfinder/internal/config"
	"github.com/reelfinder/reelfinder/internal/finder"
	"github.com/reelfinder/reelfinder/internal/health"
	"github.com/reelfinder/reelfinder/internal/scheduler"
	"github.com/reelfinder/reelfinder/internal/session"
	"github.com/reelfinder/reelfinder/internal/websocket"
	"github.com/reelfinder/reelfinder/web"
)

// LanguageModel describes the configured language model for status output.
type LanguageModel interface {
	IsConfigured() bool
	Model() string
}

// Catalog describes the configured catalog backend for status output.
type Catalog interface {
	Name() string
	IsConfigured() bool
}

// Services are the collaborators the server is built from. Scheduler is
// optional.
type Services struct {
	Selector  *finder.Selector
	Health    *health.Service
	Scheduler *scheduler.Scheduler
	LLM       LanguageModel
	Catalog   Catalog
}

// Server handles HTTP requests for the finder UI and API.
type Server struct {
	echo      *echo.Echo
	hub       *websocket.Hub
	logger    zerolog.Logger
	cfg       *config.Config
	startTime time.Time

	selector   *finder.Selector
	controller *session.Controller
	sessions   *session.Store
	health     *health.Service
	scheduler  *scheduler.Scheduler
	limiter    *ratelimit.SearchLimiter
	llm        LanguageModel
	catalog    Catalog
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config, svc Services, hub *websocket.Hub, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	templates, err := web.TemplatesFS()
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}
	renderer, err := newTemplateRenderer(templates)
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	if svc.Health == nil {
		svc.Health = health.NewService(logger)
	}

	s := &Server{
		echo:       e,
		hub:        hub,
		logger:     logger.With().Str("component", "api").Logger(),
		cfg:        cfg,
		startTime:  time.Now(),
		selector:   svc.Selector,
		controller: session.NewController(svc.Selector, logger),
		sessions:   session.NewStore(cfg.Server.SessionTTL),
		health:     svc.Health,
		scheduler:  svc.Scheduler,
		limiter:    ratelimit.NewSearchLimiter(cfg.Server.SearchesPerMinute),
		llm:        svc.LLM,
		catalog:    svc.Catalog,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Start starts the HTTP server.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Sessions returns the session store for background pruning.
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

// Limiter returns the search rate limiter for background cleanup.
func (s *Server) Limiter() *ratelimit.SearchLimiter {
	return s.limiter
}
