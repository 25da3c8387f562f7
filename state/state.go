// Package state defines the typed workflow state threaded between
// pipeline stages, together with its flattened snapshot form consumed by
// governance rules and checkpoints.
//
// The record replaces a duck-typed state dict: optional stages are
// explicit pointers, and Snapshot flattens only the fields that are
// present into a closed key vocabulary. Rules and checkpoints read the
// snapshot; they never see or touch the record itself.
package state

import (
	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/types"
)

// Version is the snapshot schema version. Bump when snapshot keys change
// meaning; rule configurations are written against a specific version.
const Version = "1.0"

// Snapshot key vocabulary. Keys are dotted domain.field paths; per-topic
// keys are produced by the Key helper.
const (
	KeyStateVersion = "state.version"
	KeySessionID    = "session.id"

	KeyZoneID   = "zone.id"
	KeyZoneName = "zone.name"

	KeyGoalCount = "goals.count"

	KeyBriefStorage   = "brief.storage"
	KeyBriefCorridors = "brief.corridors"

	// KeyBriefSensorPrefix + name (e.g. "brief.sensor.video") holds a
	// bool per sensor named in the project brief.
	KeyBriefSensorPrefix = "brief.sensor."

	KeyProposalCount = "proposals.count"

	KeyCombinedRiskCount     = "risk.count"
	KeyCombinedHighRiskCount = "risk.high_count"

	// Per-topic suffixes, combined with a finding topic via Key:
	// "public_safety.confidence", "privacy.max_severity", ...
	SuffixConfidence       = "confidence"
	SuffixRiskCount        = "risk_count"
	SuffixHighRiskCount    = "high_risk_count"
	SuffixUnmitigatedHigh  = "unmitigated_high_count"
	SuffixUnmetRequirement = "unmet_requirement_count"
	SuffixEvidenceCount    = "evidence_count"
	SuffixMaxSeverity      = "max_severity"
	SuffixNotes            = "notes"

	// Critique and validation stage keys, also per topic:
	// "critique.public_safety.status", "validation.privacy.status".
	PrefixCritique   = "critique."
	PrefixValidation = "validation."
	SuffixStatus     = "status"
)

// Key joins a topic and suffix into a per-topic snapshot key.
func Key(topic finding.Topic, suffix string) string {
	return string(topic) + "." + suffix
}

// CritiqueKey returns the snapshot key for a topic's critique field.
func CritiqueKey(topic finding.Topic, suffix string) string {
	return PrefixCritique + string(topic) + "." + suffix
}

// ValidationKey returns the snapshot key for a topic's validation field.
func ValidationKey(topic finding.Topic, suffix string) string {
	return PrefixValidation + string(topic) + "." + suffix
}

// Critique is the critic stage's review of one finding.
type Critique struct {
	// Status is ok or revise.
	Status types.CritiqueStatus `json:"status"`

	// MissingRequirements lists requirement descriptions the critic
	// found absent.
	MissingRequirements []string `json:"missing_requirements"`

	// Notes carries the critic's commentary.
	Notes string `json:"notes"`
}

// Validation is the validator stage's governed decision for one finding.
type Validation struct {
	// Status is the per-finding decision.
	Status types.Decision `json:"status"`

	// Reason explains the decision.
	Reason string `json:"reason"`

	// RulesApplied lists the governance rule IDs that fired.
	RulesApplied []string `json:"rules_applied,omitempty"`
}

// Assessment is the workflow state for one session. Fields fill in as
// stages complete; optional stages are explicit pointers. Each fan-out
// branch writes only its own slot, and only at the fan-in join.
type Assessment struct {
	SessionID string

	Zone        *types.Zone
	Goals       []types.Goal
	Constraints []types.Constraint

	Proposals []types.SolutionProposal

	Brief *types.ProjectBrief

	Findings    map[finding.Topic]*finding.Finding
	Critiques   map[finding.Topic]*Critique
	Validations map[finding.Topic]*Validation
}

// NewAssessment creates an empty assessment for one session.
func NewAssessment(sessionID string) *Assessment {
	return &Assessment{
		SessionID:   sessionID,
		Findings:    make(map[finding.Topic]*finding.Finding),
		Critiques:   make(map[finding.Topic]*Critique),
		Validations: make(map[finding.Topic]*Validation),
	}
}

// CombinedRisks returns all risks across findings, in topic order
// (public_safety, privacy, ot_security).
func (a *Assessment) CombinedRisks() []finding.Risk {
	var out []finding.Risk
	for _, topic := range RiskTopics {
		if f := a.Findings[topic]; f != nil {
			out = append(out, f.Risks...)
		}
	}
	return out
}

// CombinedRequirements returns all requirements across findings, in
// topic order.
func (a *Assessment) CombinedRequirements() []finding.Requirement {
	var out []finding.Requirement
	for _, topic := range RiskTopics {
		if f := a.Findings[topic]; f != nil {
			out = append(out, f.Requirements...)
		}
	}
	return out
}

// RiskTopics is the fixed order in which risk-analysis branches are
// reported and combined.
var RiskTopics = []finding.Topic{
	finding.TopicPublicSafety,
	finding.TopicPrivacy,
	finding.TopicOTSecurity,
}
