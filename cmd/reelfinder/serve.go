package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reelfinder/reelfinder/internal/api"
	"github.com/reelfinder/reelfinder/internal/config"
	"github.com/reelfinder/reelfinder/internal/health"
	"github.com/reelfinder/reelfinder/internal/logger"
	"github.com/reelfinder/reelfinder/internal/scheduler"
	"github.com/reelfinder/reelfinder/internal/scheduler/tasks"
	"github.com/reelfinder/reelfinder/internal/startup"
	"github.com/reelfinder/reelfinder/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(parent context.Context, cc *commandContext) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting reelfinder")

	a, err := newApp(cfg, log.Logger)
	if err != nil {
		return err
	}

	healthSvc := health.NewService(log.Logger)
	hub := websocket.NewHub(log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		return err
	}

	server, err := api.NewServer(cfg, api.Services{
		Selector:  a.selector,
		Health:    healthSvc,
		Scheduler: sched,
		LLM:       a.llm,
		Catalog:   a.catalog,
	}, hub, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := tasks.Register(sched, tasks.Deps{
		Health:        healthSvc,
		CheckInterval: cfg.Health.CheckInterval,
		Sessions:      server.Sessions(),
		Limiter:       server.Limiter(),
		Logger:        log.Logger,
	}); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown error")
		}
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Upstream checks only feed the health endpoints; pages are served meanwhile.
	go startup.ProbeDependencies(ctx, healthSvc, startup.DefaultRetryConfig(), log.Logger, a.probes()...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Address())
	}()

	log.Info().Str("address", cfg.Server.Address()).Msg("reelfinder is ready")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("reelfinder stopped")
	return nil
}
