package registry

import (
	"context"

	"ownerscope/internal/domain"
	"ownerscope/internal/ports"
	"ownerscope/internal/services/guard"
)

// Gated sends lookups through a guard tied to the registry's health record.
// While the registry is down it fails fast with domain.ErrProviderDown, which
// Cached does not store.
type Gated struct {
	next  ports.RegistryLookup
	guard *guard.Guard
}

func NewGated(next ports.RegistryLookup, g *guard.Guard) *Gated {
	return &Gated{next: next, guard: g}
}

func (g *Gated) Lookup(ctx context.Context, name, jurisdiction string) (*domain.RegistryRecord, error) {
	var rec *domain.RegistryRecord
	err := g.guard.Do(ctx, func(ctx context.Context) error {
		r, err := g.next.Lookup(ctx, name, jurisdiction)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
