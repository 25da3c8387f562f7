package rule

import "fmt"

// Severity rates how serious a triggered governance rule is. This is the
// rule-level vocabulary (HIGH/MEDIUM/LOW/NONE), distinct from the
// risk-level High/Medium/Low set in the finding package.
type Severity string

const (
	// SeverityHigh marks rules whose violation blocks a decision.
	SeverityHigh Severity = "HIGH"

	// SeverityMedium marks rules that require mitigation when triggered.
	SeverityMedium Severity = "MEDIUM"

	// SeverityLow marks advisory rules.
	SeverityLow Severity = "LOW"

	// SeverityNone marks informational rules with no enforcement weight.
	SeverityNone Severity = "NONE"
)

// IsValid returns true if the severity is a member of the closed set.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow, SeverityNone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a rule Severity.
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(s)
	if !severity.IsValid() {
		return "", fmt.Errorf("invalid rule severity: %s", s)
	}
	return severity, nil
}
