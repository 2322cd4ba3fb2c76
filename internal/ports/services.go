package ports

import (
	"context"

	"ownerscope/internal/domain"
)

// OwnershipResolver resolves the ownership chain behind an entity name.
type OwnershipResolver interface {
	Resolve(ctx context.Context, root, jurisdiction string) domain.OwnershipChain
}

// HealthAdmin is the admin surface of the provider health monitor.
type HealthAdmin interface {
	GetAll(ctx context.Context) ([]domain.ProviderHealthRecord, error)
	GetByKey(ctx context.Context, key string) (domain.ProviderHealthRecord, bool, error)
	Reset(ctx context.Context, key string) error
}

// ContactLookup fans a query out to the contact sources and merges the results.
type ContactLookup interface {
	Lookup(ctx context.Context, q ContactQuery) domain.ContactResult
}
