package finding

import "fmt"

// Risk represents a potential harm identified by a specialist analysis.
// Risks are never mutated after creation; they are consumed by synthesis
// and governance rule evaluation.
type Risk struct {
	// RiskID is a unique identifier within the enclosing Finding
	// (e.g., "RISK-OT-001").
	RiskID string `json:"risk_id"`

	// Description summarizes the risk.
	Description string `json:"description"`

	// Severity rates the risk: High, Medium, or Low.
	Severity Severity `json:"severity"`

	// Mitigation is the suggested action to reduce or eliminate the risk.
	Mitigation string `json:"mitigation"`
}

// Validate checks that the risk has the required fields and a valid severity.
func (r Risk) Validate() error {
	if r.RiskID == "" {
		return fmt.Errorf("risk ID is required")
	}
	if r.Description == "" {
		return fmt.Errorf("risk description is required")
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("invalid risk severity: %s", r.Severity)
	}
	return nil
}

// IsMitigated returns true if the risk carries a non-empty mitigation.
func (r Risk) IsMitigated() bool {
	return r.Mitigation != ""
}

// Requirement represents a control that must be implemented before a
// deployment may proceed. Same lifecycle as Risk: created by specialist
// analysis, immutable afterward.
type Requirement struct {
	// ReqID is a unique identifier within the enclosing Finding
	// (e.g., "REQ-PRIV-001").
	ReqID string `json:"req_id"`

	// Description explains the requirement.
	Description string `json:"description"`

	// IsMet records whether the project as described already satisfies
	// the requirement.
	IsMet bool `json:"is_met"`
}

// Validate checks that the requirement has the required fields.
func (r Requirement) Validate() error {
	if r.ReqID == "" {
		return fmt.Errorf("requirement ID is required")
	}
	if r.Description == "" {
		return fmt.Errorf("requirement description is required")
	}
	return nil
}
