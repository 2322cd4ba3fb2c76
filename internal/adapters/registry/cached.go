// Package registry decorates a registry-lookup collaborator with caching and
// health gating.
package registry

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"ownerscope/internal/domain"
	"ownerscope/internal/ports"
	"ownerscope/internal/services/names"
)

// Cached memoizes lookups, misses included, for a fixed TTL. Concurrent
// lookups of the same key share one call. Errors are never cached.
type Cached struct {
	next  ports.RegistryLookup
	cls   *names.Classifier
	cache *cache.Cache
	group singleflight.Group
	log   zerolog.Logger
}

// entry wraps a result so a cached miss (nil record) is distinguishable
// from an absent key.
type entry struct {
	rec *domain.RegistryRecord
}

func NewCached(next ports.RegistryLookup, cls *names.Classifier, ttl time.Duration, log zerolog.Logger) *Cached {
	if cls == nil {
		cls = names.Default()
	}
	return &Cached{
		next:  next,
		cls:   cls,
		cache: cache.New(ttl, 2*ttl),
		log:   log.With().Str("component", "registry_cache").Logger(),
	}
}

func (c *Cached) Key(name, jurisdiction string) string {
	return c.cls.NormalizeForCache(name) + "|" + strings.ToLower(strings.TrimSpace(jurisdiction))
}

func (c *Cached) Lookup(ctx context.Context, name, jurisdiction string) (*domain.RegistryRecord, error) {
	key := c.Key(name, jurisdiction)
	if v, ok := c.cache.Get(key); ok {
		c.log.Debug().Str("key", key).Msg("cache hit")
		return v.(entry).rec, nil
	}
	// the flight is shared, so one caller's cancellation must not fail the rest
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		rec, err := c.next.Lookup(flightCtx, name, jurisdiction)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, entry{rec: rec})
		return entry{rec: rec}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(entry).rec, nil
}

// Len reports how many keys are cached, expired ones included until purged.
func (c *Cached) Len() int { return c.cache.ItemCount() }

// Flush drops every cached entry.
func (c *Cached) Flush() { c.cache.Flush() }
