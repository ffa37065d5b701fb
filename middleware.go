package hostlib

import (
	"context"
	"log/slog"
	"time"
)

// ProcessFunc is the invocation shape middleware wraps.
type ProcessFunc[I, O any] func(ctx context.Context, input I) (O, error)

// Middleware wraps a ProcessFunc to add cross-cutting behavior around
// provider invocation. Middleware executes in FIFO order (first registered
// wraps first, onion model).
//
// Example usage:
//
//	timing := func(next hostlib.ProcessFunc[In, Out]) hostlib.ProcessFunc[In, Out] {
//	    return func(ctx context.Context, input In) (Out, error) {
//	        start := time.Now()
//	        out, err := next(ctx, input)
//	        log.Printf("processed in %s", time.Since(start))
//	        return out, err
//	    }
//	}
type Middleware[I, O any] func(next ProcessFunc[I, O]) ProcessFunc[I, O]

// LoggingMiddleware logs each invocation with its duration and outcome.
// Errors pass through unchanged.
func LoggingMiddleware[I, O any](logger *slog.Logger) Middleware[I, O] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ProcessFunc[I, O]) ProcessFunc[I, O] {
		return func(ctx context.Context, input I) (O, error) {
			start := time.Now()
			out, err := next(ctx, input)
			if err != nil {
				logger.ErrorContext(ctx, "provider invocation failed",
					"duration", time.Since(start),
					"error", err)
			} else {
				logger.DebugContext(ctx, "provider invocation complete",
					"duration", time.Since(start))
			}
			return out, err
		}
	}
}
