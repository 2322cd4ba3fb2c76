// Package decay runs the provider health decay sweep on a fixed interval.
package decay

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper ages provider health state. Sweeps must be idempotent.
type Sweeper interface {
	DecaySweep(ctx context.Context)
}

// Run sweeps every interval until ctx is done. It blocks; start it in its
// own goroutine.
func Run(ctx context.Context, s Sweeper, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		log.Warn().Dur("interval", interval).Msg("decay worker disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Dur("interval", interval).Msg("decay worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("decay worker stopped")
			return
		case <-ticker.C:
			RunOnce(ctx, s, log)
		}
	}
}

// RunOnce performs a single sweep, recovering from a panicking sweeper so
// the worker keeps ticking.
func RunOnce(ctx context.Context, s Sweeper, log zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("decay sweep panicked")
		}
	}()
	start := time.Now()
	s.DecaySweep(ctx)
	log.Debug().Dur("elapsed", time.Since(start)).Msg("decay sweep")
}
