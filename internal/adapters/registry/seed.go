package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ownerscope/internal/domain"
)

// SeedEntry is one registry record in an import file.
type SeedEntry struct {
	Name   string                `json:"name"`
	Record domain.RegistryRecord `json:"record"`
}

// Store accepts registry records for later lookup.
type Store interface {
	Put(ctx context.Context, name string, rec domain.RegistryRecord) error
}

// ReadSeed decodes a JSON array of seed entries.
func ReadSeed(r io.Reader) ([]SeedEntry, error) {
	var entries []SeedEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode registry seed: %w", err)
	}
	return entries, nil
}

// ImportFile loads path into store and returns how many records were stored.
func ImportFile(ctx context.Context, store Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	entries, err := ReadSeed(f)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if err := store.Put(ctx, e.Name, e.Record); err != nil {
			return i, fmt.Errorf("entry %d (%q): %w", i, e.Name, err)
		}
	}
	return len(entries), nil
}
