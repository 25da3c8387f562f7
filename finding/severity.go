package finding

import "fmt"

// Severity represents the severity level of an identified risk.
type Severity string

const (
	// SeverityHigh indicates a risk that blocks deployment until mitigated.
	// Examples: unencrypted data at rest on edge devices, ALPR without a
	// CJIS compliance path.
	SeverityHigh Severity = "High"

	// SeverityMedium indicates a risk that requires a mitigation plan but
	// does not by itself block deployment.
	SeverityMedium Severity = "Medium"

	// SeverityLow indicates a minor risk acceptable with monitoring.
	SeverityLow Severity = "Low"
)

// severityWeights maps severity levels to numeric weights for comparison.
// Higher weights indicate more severe risks.
var severityWeights = map[Severity]float64{
	SeverityHigh:   7.5,
	SeverityMedium: 5.0,
	SeverityLow:    2.5,
}

// IsValid returns true if the severity level is valid.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// Weight returns the numeric weight associated with the severity level.
// Returns 0.0 for invalid severity levels.
func (s Severity) Weight() float64 {
	if weight, ok := severityWeights[s]; ok {
		return weight
	}
	return 0.0
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity value.
// Returns an error if the string is not a valid severity level.
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(s)
	if !severity.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return severity, nil
}

// CompareSeverity compares two severity levels.
// Returns:
//   - negative if s1 < s2
//   - zero if s1 == s2
//   - positive if s1 > s2
func CompareSeverity(s1, s2 Severity) int {
	w1 := s1.Weight()
	w2 := s2.Weight()
	switch {
	case w1 < w2:
		return -1
	case w1 > w2:
		return 1
	default:
		return 0
	}
}
