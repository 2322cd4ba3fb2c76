package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"ownerscope/internal/domain"
	"ownerscope/internal/services/names"
)

// RegistryStore serves registry records previously fetched from the company
// registry. It implements ports.RegistryLookup.
type RegistryStore struct {
	db  *DB
	cls *names.Classifier
}

func NewRegistryStore(db *DB, cls *names.Classifier) *RegistryStore {
	return &RegistryStore{db: db, cls: cls}
}

// Lookup matches on the cache key of name. An empty jurisdiction matches the
// most recently fetched record in any jurisdiction.
func (s *RegistryStore) Lookup(ctx context.Context, name, jurisdiction string) (*domain.RegistryRecord, error) {
	key := s.cls.NormalizeForCache(name)
	if key == "" {
		return nil, nil
	}
	var rec domain.RegistryRecord
	err := s.db.Pool.QueryRow(ctx, `
        SELECT record FROM registry_records
        WHERE name_key = $1 AND ($2 = '' OR jurisdiction = $2)
        ORDER BY fetched_at DESC, jurisdiction
        LIMIT 1
    `, key, strings.ToLower(jurisdiction)).Scan(&rec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put stores rec under name, replacing an earlier record for the same
// name and jurisdiction.
func (s *RegistryStore) Put(ctx context.Context, name string, rec domain.RegistryRecord) error {
	key := s.cls.NormalizeForCache(name)
	if key == "" {
		return domain.ErrInvalidInput
	}
	if rec.Officers == nil {
		rec.Officers = []domain.Officer{}
	}
	_, err := s.db.Pool.Exec(ctx, `
        INSERT INTO registry_records (name_key, jurisdiction, name, record, fetched_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (name_key, jurisdiction) DO UPDATE SET
            name = EXCLUDED.name, record = EXCLUDED.record, fetched_at = EXCLUDED.fetched_at
    `, key, strings.ToLower(rec.JurisdictionCode), name, rec)
	return err
}
