// Package tasks holds the background maintenance jobs of the web server.
package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelfinder/reelfinder/internal/health"
	"github.com/reelfinder/reelfinder/internal/scheduler"
)

const (
	UpstreamCheckID  = "upstream-check"
	SessionCleanupID = "session-cleanup"
	LimiterCleanupID = "limiter-cleanup"

	sessionCleanupInterval = 5 * time.Minute
	limiterCleanupInterval = time.Minute
)

// SessionPruner forgets expired sessions.
type SessionPruner interface {
	Prune() int
}

// LimiterCleaner forgets idle rate limit buckets.
type LimiterCleaner interface {
	Cleanup()
}

// Deps are the services the maintenance tasks act on. Nil fields skip the
// corresponding task.
type Deps struct {
	Health        *health.Service
	CheckInterval time.Duration
	Sessions      SessionPruner
	Limiter       LimiterCleaner
	Logger        zerolog.Logger
}

// Register adds every maintenance task that has its dependency set.
func Register(sched *scheduler.Scheduler, deps Deps) error {
	logger := deps.Logger.With().Str("component", "tasks").Logger()

	if deps.Health != nil && deps.CheckInterval > 0 {
		if err := sched.RegisterTask(scheduler.TaskConfig{
			ID:          UpstreamCheckID,
			Name:        "Upstream Check",
			Description: "Re-checks the language model and catalog connections",
			Interval:    deps.CheckInterval,
			Func:        upstreamCheck(deps.Health, logger),
		}); err != nil {
			return err
		}
	}

	if deps.Sessions != nil {
		if err := sched.RegisterTask(scheduler.TaskConfig{
			ID:          SessionCleanupID,
			Name:        "Session Cleanup",
			Description: "Forgets sessions that have been idle past their lifetime",
			Interval:    sessionCleanupInterval,
			Func: func(context.Context) error {
				if n := deps.Sessions.Prune(); n > 0 {
					logger.Debug().Int("removed", n).Msg("pruned idle sessions")
				}
				return nil
			},
		}); err != nil {
			return err
		}
	}

	if deps.Limiter != nil {
		if err := sched.RegisterTask(scheduler.TaskConfig{
			ID:          LimiterCleanupID,
			Name:        "Rate Limit Cleanup",
			Description: "Forgets rate limit state for idle clients",
			Interval:    limiterCleanupInterval,
			Func: func(context.Context) error {
				deps.Limiter.Cleanup()
				return nil
			},
		}); err != nil {
			return err
		}
	}

	return nil
}

// upstreamCheck runs every registered health check. Individual failures are
// recorded on the health service, so the task itself only fails when it is
// cancelled.
func upstreamCheck(svc *health.Service, logger zerolog.Logger) scheduler.TaskFunc {
	return func(ctx context.Context) error {
		for _, item := range svc.GetAll() {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, ok := svc.Check(ctx, item.ID)
			if ok && !result.Success {
				logger.Warn().Str("item", item.ID).Str("message", result.Message).Msg("upstream check failed")
			}
		}
		return nil
	}
}
