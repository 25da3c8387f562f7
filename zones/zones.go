// Package zones provides the zone/project-brief store: lookup of the
// physical deployment zones known to the GIS layer. Lookups never hard
// fail: an unknown zone ID yields a placeholder zone with empty
// attributes so an assessment can still proceed and report degraded
// confidence.
package zones

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/urbannexus/core/types"
)

// Store looks up zones by ID.
type Store interface {
	// Get returns the zone for the given ID, or a placeholder zone when
	// the ID is unknown. The second return reports whether the zone was
	// found.
	Get(zoneID string) (types.Zone, bool)
}

// FileStore is a Store backed by a JSON fixture file of the form
// {"zones": [...]}. The file is read once at construction.
type FileStore struct {
	mu    sync.RWMutex
	zones map[string]types.Zone
}

type zonesFile struct {
	Zones []types.Zone `json:"zones"`
}

// Open reads a zone fixture file into an in-memory store.
func Open(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones file: %w", err)
	}
	var file zonesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse zones file: %w", err)
	}
	return NewStore(file.Zones), nil
}

// NewStore builds a store from in-memory zone definitions.
func NewStore(zones []types.Zone) *FileStore {
	byID := make(map[string]types.Zone, len(zones))
	for _, z := range zones {
		byID[z.ZoneID] = z
	}
	return &FileStore{zones: byID}
}

// Get implements Store.
func (s *FileStore) Get(zoneID string) (types.Zone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if z, ok := s.zones[zoneID]; ok {
		return z, true
	}
	return types.Placeholder(zoneID), false
}

// Len returns the number of known zones.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.zones)
}
