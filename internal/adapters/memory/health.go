// Package memory holds process-local adapters used when Postgres is not
// configured, and in tests.
package memory

import (
	"context"
	"sync"

	"ownerscope/internal/domain"
	"ownerscope/internal/ports"
)

// HealthRepository keeps provider health records in a map.
type HealthRepository struct {
	mu   sync.RWMutex
	recs map[string]domain.ProviderHealthRecord
}

func NewHealthRepository() *HealthRepository {
	return &HealthRepository{recs: map[string]domain.ProviderHealthRecord{}}
}

func (r *HealthRepository) Get(ctx context.Context, key string) (domain.ProviderHealthRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[key]
	return rec, ok, nil
}

func (r *HealthRepository) Put(ctx context.Context, rec domain.ProviderHealthRecord) error {
	r.mu.Lock()
	r.recs[rec.ProviderKey] = rec
	r.mu.Unlock()
	return nil
}

func (r *HealthRepository) List(ctx context.Context) ([]domain.ProviderHealthRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ProviderHealthRecord, 0, len(r.recs))
	for _, rec := range r.recs {
		out = append(out, rec)
	}
	return out, nil
}

func (r *HealthRepository) Update(ctx context.Context, key string, fn ports.HealthUpdateFunc) (domain.ProviderHealthRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, found := r.recs[key]
	next := fn(cur, found)
	next.ProviderKey = key
	r.recs[key] = next
	return next, nil
}
