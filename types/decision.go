package types

import "fmt"

// Decision is the governed outcome vocabulary for a deployment assessment.
type Decision string

const (
	// DecisionGo means the deployment may proceed as proposed.
	DecisionGo Decision = "GO"

	// DecisionMitigate means the deployment may proceed only after the
	// identified mitigations are applied.
	DecisionMitigate Decision = "MITIGATE"

	// DecisionHold means the deployment must not proceed; human review
	// is required.
	DecisionHold Decision = "HOLD"
)

// decisionSeverity orders decisions by how restrictive they are.
// HOLD > MITIGATE > GO: when multiple validator outputs are combined,
// the most severe decision present wins.
var decisionSeverity = map[Decision]int{
	DecisionGo:       0,
	DecisionMitigate: 1,
	DecisionHold:     2,
}

// IsValid returns true if the decision is a member of the closed set.
func (d Decision) IsValid() bool {
	_, ok := decisionSeverity[d]
	return ok
}

// String returns the string representation of the decision.
func (d Decision) String() string {
	return string(d)
}

// ParseDecision parses a string into a Decision value.
// Returns an error if the string is not a valid decision.
func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid decision: %s", s)
	}
	return d, nil
}

// CompareDecisions compares two decisions by restrictiveness.
// Returns:
//   - negative if d1 is less restrictive than d2
//   - zero if equal
//   - positive if d1 is more restrictive than d2
func CompareDecisions(d1, d2 Decision) int {
	return decisionSeverity[d1] - decisionSeverity[d2]
}

// MostRestrictive returns the most restrictive decision among the given
// decisions, following HOLD > MITIGATE > GO precedence. An empty input
// yields GO.
func MostRestrictive(decisions ...Decision) Decision {
	result := DecisionGo
	for _, d := range decisions {
		if CompareDecisions(d, result) > 0 {
			result = d
		}
	}
	return result
}

// CritiqueStatus is the outcome vocabulary of the critic stage.
type CritiqueStatus string

const (
	// CritiqueOK means the finding passed review.
	CritiqueOK CritiqueStatus = "ok"

	// CritiqueRevise means the finding is incomplete or contradictory
	// and the validator must HOLD.
	CritiqueRevise CritiqueStatus = "revise"
)

// IsValid returns true if the critique status is valid.
func (c CritiqueStatus) IsValid() bool {
	switch c {
	case CritiqueOK, CritiqueRevise:
		return true
	default:
		return false
	}
}

// String returns the string representation of the critique status.
func (c CritiqueStatus) String() string {
	return string(c)
}
