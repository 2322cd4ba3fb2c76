package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ownerscope/internal/domain"
	"ownerscope/internal/ports"
)

// HealthRepository persists provider health records so status survives
// restarts and is shared between server instances.
type HealthRepository struct{ db *DB }

func NewHealthRepository(db *DB) *HealthRepository { return &HealthRepository{db: db} }

const healthColumns = `provider_key, display_name, status, error_count_window, success_count_window,
    error_rate_window, consecutive_failures, last_error_message, last_error_at, last_success_at, updated_at`

func scanHealth(row pgx.Row) (domain.ProviderHealthRecord, error) {
	var rec domain.ProviderHealthRecord
	var status string
	err := row.Scan(&rec.ProviderKey, &rec.DisplayName, &status, &rec.ErrorCountWindow, &rec.SuccessCountWindow,
		&rec.ErrorRateWindow, &rec.ConsecutiveFailures, &rec.LastErrorMessage, &rec.LastErrorAt, &rec.LastSuccessAt, &rec.UpdatedAt)
	rec.Status = domain.HealthStatus(status)
	return rec, err
}

func (r *HealthRepository) Get(ctx context.Context, key string) (domain.ProviderHealthRecord, bool, error) {
	rec, err := scanHealth(r.db.Pool.QueryRow(ctx, `SELECT `+healthColumns+` FROM provider_health WHERE provider_key = $1`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ProviderHealthRecord{}, false, nil
	}
	if err != nil {
		return domain.ProviderHealthRecord{}, false, err
	}
	return rec, true, nil
}

func (r *HealthRepository) Put(ctx context.Context, rec domain.ProviderHealthRecord) error {
	return upsertHealth(ctx, r.db.Pool, rec)
}

func (r *HealthRepository) List(ctx context.Context) ([]domain.ProviderHealthRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+healthColumns+` FROM provider_health ORDER BY provider_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.ProviderHealthRecord{}
	for rows.Next() {
		rec, err := scanHealth(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update serializes writers of one provider, in this process or another, on
// a transaction-scoped advisory lock keyed by the provider key.
func (r *HealthRepository) Update(ctx context.Context, key string, fn ports.HealthUpdateFunc) (domain.ProviderHealthRecord, error) {
	var next domain.ProviderHealthRecord
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return err
		}
		cur, err := scanHealth(tx.QueryRow(ctx, `SELECT `+healthColumns+` FROM provider_health WHERE provider_key = $1`, key))
		found := err == nil
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if !found {
			cur = domain.ProviderHealthRecord{}
		}
		next = fn(cur, found)
		next.ProviderKey = key
		return upsertHealth(ctx, tx, next)
	})
	return next, err
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertHealth(ctx context.Context, ex execer, rec domain.ProviderHealthRecord) error {
	_, err := ex.Exec(ctx, `
        INSERT INTO provider_health (`+healthColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (provider_key) DO UPDATE SET
            display_name = EXCLUDED.display_name,
            status = EXCLUDED.status,
            error_count_window = EXCLUDED.error_count_window,
            success_count_window = EXCLUDED.success_count_window,
            error_rate_window = EXCLUDED.error_rate_window,
            consecutive_failures = EXCLUDED.consecutive_failures,
            last_error_message = EXCLUDED.last_error_message,
            last_error_at = EXCLUDED.last_error_at,
            last_success_at = EXCLUDED.last_success_at,
            updated_at = EXCLUDED.updated_at
    `, rec.ProviderKey, rec.DisplayName, string(rec.Status), rec.ErrorCountWindow, rec.SuccessCountWindow,
		rec.ErrorRateWindow, rec.ConsecutiveFailures, rec.LastErrorMessage, rec.LastErrorAt, rec.LastSuccessAt, rec.UpdatedAt)
	return err
}
