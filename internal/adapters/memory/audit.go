package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"ownerscope/internal/domain"
)

// AuditLog records audit events in memory and mirrors them to a logger.
type AuditLog struct {
	log    zerolog.Logger
	mu     sync.Mutex
	events []domain.AuditEvent
}

func NewAuditLog(log zerolog.Logger) *AuditLog {
	return &AuditLog{log: log.With().Str("component", "audit").Logger()}
}

func (a *AuditLog) Log(ctx context.Context, ev domain.AuditEvent) error {
	a.mu.Lock()
	a.events = append(a.events, ev)
	a.mu.Unlock()
	a.log.Info().
		Str("event_id", ev.ID).
		Str("type", ev.Type).
		Str("subject", ev.Subject).
		Fields(ev.Fields).
		Msg("audit")
	return nil
}

// Events returns a copy of everything logged so far.
func (a *AuditLog) Events() []domain.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditEvent, len(a.events))
	copy(out, a.events)
	return out
}

// Recent returns up to limit events, newest first.
func (a *AuditLog) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit <= 0 || limit > len(a.events) {
		limit = len(a.events)
	}
	out := make([]domain.AuditEvent, 0, limit)
	for i := len(a.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.events[i])
	}
	return out, nil
}

// Count returns how many events of the given type were logged.
func (a *AuditLog) Count(typ string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, ev := range a.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
