package postgres

import (
	"context"

	"github.com/google/uuid"

	"ownerscope/internal/domain"
)

// AuditSink stores audit events in audit_events.
type AuditSink struct{ db *DB }

func NewAuditSink(db *DB) *AuditSink { return &AuditSink{db: db} }

func (a *AuditSink) Log(ctx context.Context, ev domain.AuditEvent) error {
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		id = uuid.New()
	}
	fields := ev.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	_, err = a.db.Pool.Exec(ctx, `
        INSERT INTO audit_events (id, type, subject, fields, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, id, ev.Type, ev.Subject, fields, ev.Timestamp)
	return err
}

func (a *AuditSink) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.Pool.Query(ctx, `
        SELECT id::text, type, subject, fields, created_at
        FROM audit_events
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.AuditEvent{}
	for rows.Next() {
		var ev domain.AuditEvent
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Subject, &ev.Fields, &ev.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
