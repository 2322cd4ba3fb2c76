package memory

import (
	"context"
	"strings"
	"sync"

	"ownerscope/internal/domain"
	"ownerscope/internal/services/names"
)

// RegistryStore holds registry records in memory, keyed like the Postgres
// store. It implements ports.RegistryLookup.
type RegistryStore struct {
	cls *names.Classifier
	mu  sync.RWMutex
	seq uint64
	// cache key -> jurisdiction -> record
	recs map[string]map[string]storedRecord
}

// storedRecord orders writes the way fetched_at does in Postgres.
type storedRecord struct {
	rec domain.RegistryRecord
	seq uint64
}

func NewRegistryStore(cls *names.Classifier) *RegistryStore {
	if cls == nil {
		cls = names.Default()
	}
	return &RegistryStore{cls: cls, recs: map[string]map[string]storedRecord{}}
}

func (s *RegistryStore) Put(ctx context.Context, name string, rec domain.RegistryRecord) error {
	key := s.cls.NormalizeForCache(name)
	if key == "" {
		return domain.ErrInvalidInput
	}
	if rec.Officers == nil {
		rec.Officers = []domain.Officer{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recs[key] == nil {
		s.recs[key] = map[string]storedRecord{}
	}
	s.seq++
	s.recs[key][strings.ToLower(rec.JurisdictionCode)] = storedRecord{rec: rec, seq: s.seq}
	return nil
}

// Lookup returns a copy of the stored record. An empty jurisdiction matches
// the most recently stored record in any jurisdiction.
func (s *RegistryStore) Lookup(ctx context.Context, name, jurisdiction string) (*domain.RegistryRecord, error) {
	key := s.cls.NormalizeForCache(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	byJur := s.recs[key]
	if len(byJur) == 0 {
		return nil, nil
	}
	var (
		found  storedRecord
		exists bool
	)
	if jurisdiction != "" {
		found, exists = byJur[strings.ToLower(jurisdiction)]
	} else {
		for _, sr := range byJur {
			if !exists || sr.seq > found.seq {
				found, exists = sr, true
			}
		}
	}
	if !exists {
		return nil, nil
	}
	rec := found.rec
	rec.Officers = append([]domain.Officer(nil), found.rec.Officers...)
	return &rec, nil
}
