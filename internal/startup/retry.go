// Package startup holds the work done once when the server boots.
package startup

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelfinder/reelfinder/internal/health"
)

// RetryConfig configures the exponential backoff used while probing upstreams.
type RetryConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	Multiplier   float64
}

// DefaultRetryConfig returns the backoff used at boot.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		MaxAttempts:  4,
		Multiplier:   2.0,
	}
}

var networkIndicators = []string{
	"connection refused",
	"no such host",
	"timeout",
	"network is unreachable",
	"no route to host",
	"dial tcp",
	"i/o timeout",
	"connection reset",
	"temporary failure in name resolution",
}

// IsNetworkError reports whether err looks like the network is unavailable,
// as opposed to the upstream rejecting the request.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range networkIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// WithRetry runs fn until it succeeds, fails with a non-network error, the
// attempts run out, or ctx is done.
func WithRetry(ctx context.Context, name string, cfg RetryConfig, fn func(context.Context) error, logger zerolog.Logger) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				logger.Info().Str("operation", name).Int("attempt", attempt).Msg("operation succeeded after retry")
			}
			return nil
		}
		if !IsNetworkError(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Warn().
			Err(lastErr).
			Str("operation", name).
			Int("attempt", attempt).
			Dur("nextRetryIn", delay).
			Msg("network error, will retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	logger.Error().Err(lastErr).Str("operation", name).Int("attempts", cfg.MaxAttempts).
		Msg("operation failed after all retries")
	return lastErr
}

// Probe is one upstream to verify at boot.
type Probe struct {
	ID    string
	Name  string
	Check health.CheckFunc
	// Skip, when set, is recorded as a warning instead of running Check.
	Skip string
}

// ProbeDependencies registers each probe with the health service and runs it
// with retry. Failures are recorded, never returned: the server still serves
// pages when an upstream is down.
func ProbeDependencies(ctx context.Context, svc *health.Service, cfg RetryConfig, logger zerolog.Logger, probes ...Probe) {
	logger = logger.With().Str("component", "startup").Logger()

	for _, p := range probes {
		check := p.Check
		if p.Skip != "" {
			check = nil
		}
		svc.RegisterItem(p.ID, p.Name, check)
	}

	for _, p := range probes {
		if p.Skip != "" {
			svc.SetWarning(p.ID, p.Skip)
			logger.Warn().Str("dependency", p.Name).Msg(p.Skip)
			continue
		}
		if p.Check == nil {
			continue
		}

		err := WithRetry(ctx, "probe "+p.Name, cfg, p.Check, logger)
		if err != nil {
			svc.SetError(p.ID, err.Error())
			continue
		}
		svc.ClearStatus(p.ID)
		logger.Info().Str("dependency", p.Name).Msg("dependency reachable")
	}
}
