// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/curator/internal/metrics"
)

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newReadBreaker(cfg BreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[any] {
	settings := gobreaker.Settings{
		Name:        "recommend-reads",
		MaxRequests: cfg.MaxHalfOpen,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// The caller giving up is not a collaborator failure.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

// readWithRetry runs fn through the breaker and retries once after the
// configured backoff. Cancellation of ctx is returned as-is without a retry.
func readWithRetry[T any](ctx context.Context, e *Engine, op string, fn func(context.Context) (T, error)) (T, error) {
	call := func() (T, error) {
		var zero T
		v, err := e.breaker.Execute(func() (any, error) {
			return fn(ctx)
		})
		if err != nil {
			return zero, err
		}
		out, _ := v.(T)
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	v, err := call()
	if err == nil || ctx.Err() != nil {
		return v, err
	}

	metrics.RecordQueryRetry(op)
	e.logger.Debug().Err(err).Str("operation", op).Msg("Read failed, retrying once")

	if e.config.QueryRetryBackoff > 0 {
		timer := time.NewTimer(e.config.QueryRetryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return call()
}
