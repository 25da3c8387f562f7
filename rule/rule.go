package rule

import (
	"fmt"

	"github.com/urbannexus/core/types"
)

// Effect is the machine-enforceable consequence of a triggered rule.
// The RequiredAction field on a Rule is the human-auditable label; Effect
// is what the validator actually enforces.
type Effect string

const (
	// EffectHold forces the decision to HOLD.
	EffectHold Effect = "hold"

	// EffectMitigate floors the decision at MITIGATE.
	EffectMitigate Effect = "mitigate"

	// EffectEscalate forces needs_human_review without constraining the
	// decision itself.
	EffectEscalate Effect = "escalate"

	// EffectNone marks advisory rules: triggering is recorded in the
	// trace but changes nothing.
	EffectNone Effect = "none"
)

// IsValid returns true if the effect is a member of the closed set.
func (e Effect) IsValid() bool {
	switch e {
	case EffectHold, EffectMitigate, EffectEscalate, EffectNone:
		return true
	default:
		return false
	}
}

// DecisionFloor returns the minimum decision this effect imposes.
func (e Effect) DecisionFloor() types.Decision {
	switch e {
	case EffectHold:
		return types.DecisionHold
	case EffectMitigate:
		return types.DecisionMitigate
	default:
		return types.DecisionGo
	}
}

// Rule is a single declarative governance predicate with its enforcement
// policy. Rules are immutable once constructed: they are defined at
// process start (in code or YAML), validated statically, and evaluated
// per invocation against a state snapshot, never mutated.
//
// Rules with OverrideAllowed=false are non-negotiable: when triggered,
// no validator decision derived from the same state may contradict the
// rule's effect, regardless of other evidence.
type Rule struct {
	// RuleID is the globally unique rule identifier (e.g., "SC-CJIS-001").
	RuleID string `yaml:"rule_id" json:"rule_id"`

	// Description is the human-readable rule statement.
	Description string `yaml:"description" json:"description"`

	// Trigger is the condition under which the rule fires.
	Trigger Predicate `yaml:"trigger" json:"trigger"`

	// RequiredAction is the auditable label of what must happen when the
	// rule fires. It is documentation for reviewers, not executable code.
	RequiredAction string `yaml:"required_action" json:"required_action"`

	// Effect is the enforcement applied by the validator when the rule
	// fires.
	Effect Effect `yaml:"effect" json:"effect"`

	// OverrideAllowed records whether a human may override the rule.
	OverrideAllowed bool `yaml:"override_allowed" json:"override_allowed"`

	// Severity rates the rule.
	Severity Severity `yaml:"severity" json:"severity"`

	// Priority resolves conflicts between triggered rules: higher wins,
	// ties broken by lexical RuleID. Resolution never depends on
	// iteration order.
	Priority int `yaml:"priority" json:"priority"`
}

// Validate performs the static configuration-load checks for one rule.
func (r Rule) Validate() error {
	if r.RuleID == "" {
		return fmt.Errorf("rule ID is required")
	}
	if r.Description == "" {
		return fmt.Errorf("rule %s: description is required", r.RuleID)
	}
	if r.RequiredAction == "" {
		return fmt.Errorf("rule %s: required action is required", r.RuleID)
	}
	if !r.Effect.IsValid() {
		return fmt.Errorf("rule %s: invalid effect: %q", r.RuleID, r.Effect)
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("rule %s: invalid severity: %q", r.RuleID, r.Severity)
	}
	if err := r.Trigger.Validate(); err != nil {
		return fmt.Errorf("rule %s: invalid trigger: %w", r.RuleID, err)
	}
	return nil
}
