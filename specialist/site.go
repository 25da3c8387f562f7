package specialist

import (
	"context"

	"github.com/urbannexus/core/types"
	"github.com/urbannexus/core/zones"
)

// SiteViability resolves a zone ID to its GIS and infrastructure
// context. An unknown zone yields the placeholder zone so the
// assessment can proceed against an empty environment.
type SiteViability struct {
	store zones.Store
}

// NewSiteViability constructs the site viability agent over a zone
// store.
func NewSiteViability(store zones.Store) *SiteViability {
	return &SiteViability{store: store}
}

// Name is the agent identity recorded in trace events.
func (s *SiteViability) Name() string { return "site_viability_agent" }

// Assess retrieves the zone context for the given zone ID.
func (s *SiteViability) Assess(ctx context.Context, zoneID string) types.Zone {
	if s.store == nil {
		return types.Placeholder(zoneID)
	}
	zone, ok := s.store.Get(zoneID)
	if !ok {
		return types.Placeholder(zoneID)
	}
	return zone
}
