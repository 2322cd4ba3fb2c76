package ports

import (
	"context"

	"ownerscope/internal/domain"
)

// RegistryLookup fetches officers and agent for a company. A nil record with a
// nil error means the registry has no data for the name.
type RegistryLookup interface {
	Lookup(ctx context.Context, name, jurisdiction string) (*domain.RegistryRecord, error)
}

// HealthUpdateFunc maps the current record to its successor. found is false
// when no record exists yet.
type HealthUpdateFunc func(cur domain.ProviderHealthRecord, found bool) domain.ProviderHealthRecord

// HealthRepository stores provider health records keyed by provider key.
type HealthRepository interface {
	Get(ctx context.Context, key string) (rec domain.ProviderHealthRecord, found bool, err error)
	Put(ctx context.Context, rec domain.ProviderHealthRecord) error
	List(ctx context.Context) ([]domain.ProviderHealthRecord, error)
	// Update applies fn to the stored record atomically and persists the result.
	Update(ctx context.Context, key string, fn HealthUpdateFunc) (domain.ProviderHealthRecord, error)
}

// AuditSink receives structured audit events.
type AuditSink interface {
	Log(ctx context.Context, ev domain.AuditEvent) error
}

// AuditReader lists recent audit events, newest first.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
