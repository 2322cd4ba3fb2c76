// Package guard wraps calls to one external data source with a concurrency
// limit, bounded retries and the source's live health status.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/semaphore"

	"ownerscope/internal/domain"
)

// StatusRecorder is the slice of the health monitor a guard needs.
type StatusRecorder interface {
	Status(ctx context.Context, key string) domain.HealthStatus
	RecordSuccess(ctx context.Context, key string)
	RecordError(ctx context.Context, key string, err error)
}

type Guard struct {
	key      string
	mon      StatusRecorder
	sem      *semaphore.Weighted
	attempts uint64
	base     time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

type Option func(*Guard)

func WithConcurrency(n int64) Option {
	return func(g *Guard) {
		if n > 0 {
			g.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithAttempts sets the total number of attempts, first call included.
func WithAttempts(n int) Option {
	return func(g *Guard) {
		if n > 0 {
			g.attempts = uint64(n)
		}
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.base = d
		}
	}
}

// WithTimeout bounds every single attempt.
func WithTimeout(d time.Duration) Option { return func(g *Guard) { g.timeout = d } }

func WithLogger(l zerolog.Logger) Option { return func(g *Guard) { g.log = l } }

func New(key string, mon StatusRecorder, opts ...Option) *Guard {
	g := &Guard{
		key:      key,
		mon:      mon,
		sem:      semaphore.NewWeighted(2),
		attempts: 3,
		base:     500 * time.Millisecond,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With().Str("provider", key).Logger()
	return g
}

func (g *Guard) Key() string { return g.key }

// Do runs fn under the guard. A source already reported down is not called
// and ErrProviderDown is returned; authorization failures abort at once.
func (g *Guard) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	attempt := 0
	backoff := retry.WithMaxRetries(g.attempts-1, retry.WithJitterPercent(20, retry.NewExponential(g.base)))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if g.mon != nil && g.mon.Status(ctx, g.key) == domain.StatusDown {
			return fmt.Errorf("%s: %w", g.key, domain.ErrProviderDown)
		}
		attempt++
		err := g.call(ctx, fn)
		if err == nil {
			if g.mon != nil {
				g.mon.RecordSuccess(ctx, g.key)
			}
			return nil
		}
		if g.mon != nil {
			g.mon.RecordError(ctx, g.key, err)
		}
		if !domain.Retryable(err) {
			g.log.Warn().Err(err).Int("attempt", attempt).Msg("non-retryable failure")
			return err
		}
		g.log.Debug().Err(err).Int("attempt", attempt).Msg("attempt failed")
		return retry.RetryableError(err)
	})
}

func (g *Guard) call(ctx context.Context, fn func(context.Context) error) error {
	if g.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return fn(ctx)
}
