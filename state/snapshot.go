package state

import (
	"strings"

	"github.com/urbannexus/core/finding"
)

// Snapshot flattens the assessment into the read-only key/value mapping
// consumed by rule and checkpoint evaluation. Only present fields emit
// keys: a missing finding contributes nothing, so key-exists predicates
// and checkpoint required-key lists model optionality directly.
//
// The returned map is a fresh copy each call; mutating it cannot affect
// the assessment.
func (a *Assessment) Snapshot() map[string]any {
	snap := map[string]any{
		KeyStateVersion: Version,
		KeySessionID:    a.SessionID,
	}

	if a.Zone != nil {
		snap[KeyZoneID] = a.Zone.ZoneID
		snap[KeyZoneName] = a.Zone.Name
	}

	snap[KeyGoalCount] = len(a.Goals)
	snap[KeyProposalCount] = len(a.Proposals)

	if a.Brief != nil {
		snap[KeyBriefStorage] = a.Brief.Storage
		snap[KeyBriefCorridors] = strings.Join(a.Brief.Corridors, ",")
		for name, on := range a.Brief.Sensors {
			snap[KeyBriefSensorPrefix+name] = on
		}
	}

	riskCount := 0
	highCount := 0
	for topic, f := range a.Findings {
		if f == nil {
			continue
		}
		snap[Key(topic, SuffixConfidence)] = f.Confidence
		snap[Key(topic, SuffixRiskCount)] = len(f.Risks)
		snap[Key(topic, SuffixEvidenceCount)] = len(f.Evidence)
		snap[Key(topic, SuffixUnmetRequirement)] = len(f.UnmetRequirements())
		snap[Key(topic, SuffixNotes)] = f.Notes

		high := 0
		for _, r := range f.Risks {
			if r.Severity == finding.SeverityHigh {
				high++
			}
		}
		snap[Key(topic, SuffixHighRiskCount)] = high
		snap[Key(topic, SuffixUnmitigatedHigh)] = len(f.UnmitigatedHighRisks())
		if max := f.MaxRiskSeverity(); max != "" {
			snap[Key(topic, SuffixMaxSeverity)] = string(max)
		}

		riskCount += len(f.Risks)
		highCount += high
	}
	snap[KeyCombinedRiskCount] = riskCount
	snap[KeyCombinedHighRiskCount] = highCount

	for topic, c := range a.Critiques {
		if c == nil {
			continue
		}
		snap[CritiqueKey(topic, SuffixStatus)] = string(c.Status)
	}
	for topic, v := range a.Validations {
		if v == nil {
			continue
		}
		snap[ValidationKey(topic, SuffixStatus)] = string(v.Status)
	}

	return snap
}
