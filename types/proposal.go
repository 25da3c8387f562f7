package types

import "fmt"

// HardwareCategory classifies a hardware unit.
type HardwareCategory string

// Valid hardware categories.
const (
	HardwareControl HardwareCategory = "Control"
	HardwareHub     HardwareCategory = "Hub"
	HardwareGrid    HardwareCategory = "Grid"
)

// IsValid returns true if the category is valid.
func (h HardwareCategory) IsValid() bool {
	switch h {
	case HardwareControl, HardwareHub, HardwareGrid:
		return true
	default:
		return false
	}
}

// HardwareSpec represents a deployable hardware unit.
type HardwareSpec struct {
	// SKU is the product model (e.g., "UbiHub AI+").
	SKU string `json:"sku"`

	// Category classifies the unit.
	Category HardwareCategory `json:"category"`

	// Features lists the enabled capabilities (e.g., ["LPR", "Public WiFi"]).
	Features []string `json:"features"`
}

// Validate checks the hardware spec.
func (h HardwareSpec) Validate() error {
	if h.SKU == "" {
		return fmt.Errorf("hardware SKU is required")
	}
	if !h.Category.IsValid() {
		return fmt.Errorf("invalid hardware category: %s", h.Category)
	}
	return nil
}

// SolutionProposal represents a specific deployment recommendation
// produced by a value-analysis specialist.
type SolutionProposal struct {
	// ProposalID uniquely identifies this proposal.
	ProposalID string `json:"proposal_id"`

	// Hardware is the recommended unit.
	Hardware HardwareSpec `json:"hardware"`

	// LocationDescription says where to deploy (e.g., "Perimeter poles").
	LocationDescription string `json:"location_description"`

	// ValueProposition says why this adds value.
	ValueProposition string `json:"value_proposition"`

	// Justification is the reasoning behind the choice.
	Justification string `json:"justification"`
}

// Validate checks the proposal.
func (p SolutionProposal) Validate() error {
	if p.ProposalID == "" {
		return fmt.Errorf("proposal ID is required")
	}
	if err := p.Hardware.Validate(); err != nil {
		return fmt.Errorf("invalid hardware: %w", err)
	}
	return nil
}
