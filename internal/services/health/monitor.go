// Package health tracks the live reliability of external data sources.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ownerscope/internal/domain"
	"ownerscope/internal/ports"
)

// Monitor applies Transition to stored provider records. It is advisory: it
// never blocks a call and never surfaces storage failures to recorders.
type Monitor struct {
	repo   ports.HealthRepository
	audit  ports.AuditSink
	log    zerolog.Logger
	now    func() time.Time
	factor float64
	window time.Duration

	mu           sync.RWMutex
	displayNames map[string]string
}

type Option func(*Monitor)

func WithClock(now func() time.Time) Option { return func(m *Monitor) { m.now = now } }

func WithDecayFactor(f float64) Option { return func(m *Monitor) { m.factor = f } }

func WithRecoveryWindow(d time.Duration) Option { return func(m *Monitor) { m.window = d } }

func NewMonitor(repo ports.HealthRepository, audit ports.AuditSink, log zerolog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		repo:         repo,
		audit:        audit,
		log:          log.With().Str("component", "health").Logger(),
		now:          time.Now,
		factor:       DefaultDecayFactor,
		window:       DefaultRecoveryWindow,
		displayNames: map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register sets the display name used when the provider's record is created.
func (m *Monitor) Register(key, displayName string) {
	m.mu.Lock()
	m.displayNames[key] = displayName
	m.mu.Unlock()
}

func (m *Monitor) RecordSuccess(ctx context.Context, key string) {
	m.apply(ctx, key, Event{Kind: EventSuccess, At: m.now()})
}

func (m *Monitor) RecordError(ctx context.Context, key string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	prev, next, ok := m.apply(ctx, key, Event{Kind: EventError, At: m.now(), Err: msg})
	if !ok || prev.Status == domain.StatusDown || next.Status != domain.StatusDown {
		return
	}
	m.log.Warn().
		Str("provider", key).
		Int("consecutive_failures", next.ConsecutiveFailures).
		Float64("error_rate", next.ErrorRateWindow).
		Str("error", msg).
		Msg("provider marked down")
	m.emit(ctx, domain.AuditProviderDown, key, map[string]any{
		"displayName":         next.DisplayName,
		"consecutiveFailures": next.ConsecutiveFailures,
		"errorRate":           next.ErrorRateWindow,
	})
}

// DecaySweep ages every provider's counters and auto-recovers providers that
// have been error-free for the recovery window. Safe to run repeatedly.
func (m *Monitor) DecaySweep(ctx context.Context) {
	recs, err := m.repo.List(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("decay sweep: list providers")
		return
	}
	for _, rec := range recs {
		if ctx.Err() != nil {
			return
		}
		ev := Event{Kind: EventDecay, At: m.now(), Factor: m.factor, RecoveryWindow: m.window}
		prev, next, ok := m.apply(ctx, rec.ProviderKey, ev)
		if !ok {
			continue
		}
		if prev.Status != domain.StatusHealthy && next.Status == domain.StatusHealthy {
			m.log.Info().Str("provider", rec.ProviderKey).Str("from", string(prev.Status)).Msg("provider recovered")
			m.emit(ctx, domain.AuditProviderRecovered, rec.ProviderKey, map[string]any{"from": string(prev.Status)})
		}
	}
	m.log.Debug().Int("providers", len(recs)).Msg("decay sweep complete")
}

// Reset is the admin override back to healthy with zero counters.
func (m *Monitor) Reset(ctx context.Context, key string) error {
	prev, _, err := m.update(ctx, key, Event{Kind: EventReset, At: m.now()})
	if err != nil {
		return err
	}
	m.log.Info().Str("provider", key).Str("from", string(prev.Status)).Msg("provider reset")
	m.emit(ctx, domain.AuditProviderReset, key, map[string]any{"from": string(prev.Status)})
	return nil
}

// Status returns the provider's current status; unknown providers are healthy.
func (m *Monitor) Status(ctx context.Context, key string) domain.HealthStatus {
	rec, found, err := m.repo.Get(ctx, key)
	if err != nil {
		m.log.Warn().Err(err).Str("provider", key).Msg("status lookup failed")
		return domain.StatusHealthy
	}
	if !found || rec.Status == "" {
		return domain.StatusHealthy
	}
	return rec.Status
}

func (m *Monitor) GetAll(ctx context.Context) ([]domain.ProviderHealthRecord, error) {
	recs, err := m.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ProviderKey < recs[j].ProviderKey })
	return recs, nil
}

func (m *Monitor) GetByKey(ctx context.Context, key string) (domain.ProviderHealthRecord, bool, error) {
	return m.repo.Get(ctx, key)
}

func (m *Monitor) apply(ctx context.Context, key string, ev Event) (prev, next domain.ProviderHealthRecord, ok bool) {
	prev, next, err := m.update(ctx, key, ev)
	if err != nil {
		m.log.Warn().Err(err).Str("provider", key).Stringer("event", ev.Kind).Msg("update health record")
		return prev, next, false
	}
	return prev, next, true
}

// update runs Transition inside the repository's atomic update. Records are
// created on first reference.
func (m *Monitor) update(ctx context.Context, key string, ev Event) (prev, next domain.ProviderHealthRecord, err error) {
	next, err = m.repo.Update(ctx, key, func(cur domain.ProviderHealthRecord, found bool) domain.ProviderHealthRecord {
		if !found {
			cur = m.fresh(key)
		}
		prev = cur
		return Transition(cur, ev)
	})
	return prev, next, err
}

func (m *Monitor) fresh(key string) domain.ProviderHealthRecord {
	m.mu.RLock()
	name := m.displayNames[key]
	m.mu.RUnlock()
	if name == "" {
		name = key
	}
	return domain.ProviderHealthRecord{
		ProviderKey: key,
		DisplayName: name,
		Status:      domain.StatusHealthy,
		UpdatedAt:   m.now(),
	}
}

func (m *Monitor) emit(ctx context.Context, typ, subject string, fields map[string]any) {
	if m.audit == nil {
		return
	}
	ev := domain.AuditEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Subject:   subject,
		Fields:    fields,
		Timestamp: m.now(),
	}
	if err := m.audit.Log(ctx, ev); err != nil {
		m.log.Warn().Err(err).Str("event", typ).Msg("audit sink rejected event")
	}
}
