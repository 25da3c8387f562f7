package finding

import "fmt"

// Topic classifies which specialist produced a Finding.
type Topic string

const (
	// TopicPublicSafety marks findings from the public safety specialist.
	TopicPublicSafety Topic = "public_safety"

	// TopicPrivacy marks findings from the privacy counsel.
	TopicPrivacy Topic = "privacy"

	// TopicOTSecurity marks findings from the OT security engineer.
	TopicOTSecurity Topic = "ot_security"
)

// IsValid returns true if the topic is valid.
func (t Topic) IsValid() bool {
	switch t {
	case TopicPublicSafety, TopicPrivacy, TopicOTSecurity:
		return true
	default:
		return false
	}
}

// String returns the string representation of the topic.
func (t Topic) String() string {
	return string(t)
}

// DegradedConfidence is the confidence assigned to fallback findings
// produced when a collaborator returns no usable response.
const DegradedConfidence = 0.35

// Finding is the structured output of one specialist's analysis of a
// project brief: supporting evidence, identified risks, deployment
// requirements, free-form notes, and a confidence score.
//
// Findings are produced once per specialist per session and treated as
// immutable afterward. All three risk-analysis variants (public safety,
// privacy, OT security) share this structure, distinguished by Topic.
type Finding struct {
	// Topic identifies the specialist domain.
	Topic Topic `json:"topic"`

	// Evidence lists the knowledge-base snippets supporting the analysis.
	Evidence []Evidence `json:"evidence"`

	// Risks lists the risks identified by the specialist.
	Risks []Risk `json:"risks"`

	// Requirements lists the controls that must be met.
	Requirements []Requirement `json:"requirements"`

	// Notes carries additional free-form commentary from the specialist.
	Notes string `json:"notes,omitempty"`

	// Confidence is the specialist's confidence in the analysis,
	// between 0.0 and 1.0.
	Confidence float64 `json:"confidence"`
}

// New creates a Finding with the given contents and validates it.
func New(topic Topic, evidence []Evidence, risks []Risk, requirements []Requirement, notes string, confidence float64) (*Finding, error) {
	f := &Finding{
		Topic:        topic,
		Evidence:     evidence,
		Risks:        risks,
		Requirements: requirements,
		Notes:        notes,
		Confidence:   confidence,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Degraded returns the deterministic fallback Finding used when the
// text-generation or retrieval collaborator produces no usable response:
// empty risk and requirement lists with low confidence. Degradation is
// per-branch; it never aborts the session.
func Degraded(topic Topic, note string) *Finding {
	if note == "" {
		note = "analysis degraded: collaborator returned no usable response"
	}
	return &Finding{
		Topic:        topic,
		Evidence:     []Evidence{},
		Risks:        []Risk{},
		Requirements: []Requirement{},
		Notes:        note,
		Confidence:   DegradedConfidence,
	}
}

// Validate checks topic, confidence bounds, constituent values, and the
// uniqueness of risk and requirement IDs within the finding.
func (f *Finding) Validate() error {
	if !f.Topic.IsValid() {
		return fmt.Errorf("invalid topic: %s", f.Topic)
	}
	if f.Confidence < 0.0 || f.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %f", f.Confidence)
	}

	for i, ev := range f.Evidence {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("invalid evidence at index %d: %w", i, err)
		}
	}

	riskIDs := make(map[string]bool, len(f.Risks))
	for i, r := range f.Risks {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("invalid risk at index %d: %w", i, err)
		}
		if riskIDs[r.RiskID] {
			return fmt.Errorf("duplicate risk ID: %s", r.RiskID)
		}
		riskIDs[r.RiskID] = true
	}

	reqIDs := make(map[string]bool, len(f.Requirements))
	for i, r := range f.Requirements {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("invalid requirement at index %d: %w", i, err)
		}
		if reqIDs[r.ReqID] {
			return fmt.Errorf("duplicate requirement ID: %s", r.ReqID)
		}
		reqIDs[r.ReqID] = true
	}

	return nil
}

// MaxRiskSeverity returns the highest severity among the finding's risks,
// or the empty severity if there are no risks.
func (f *Finding) MaxRiskSeverity() Severity {
	var max Severity
	for _, r := range f.Risks {
		if CompareSeverity(r.Severity, max) > 0 {
			max = r.Severity
		}
	}
	return max
}

// UnmitigatedHighRisks returns the High-severity risks that do not carry
// a mitigation.
func (f *Finding) UnmitigatedHighRisks() []Risk {
	var out []Risk
	for _, r := range f.Risks {
		if r.Severity == SeverityHigh && !r.IsMitigated() {
			out = append(out, r)
		}
	}
	return out
}

// UnmetRequirements returns the requirements whose IsMet flag is false.
func (f *Finding) UnmetRequirements() []Requirement {
	var out []Requirement
	for _, r := range f.Requirements {
		if !r.IsMet {
			out = append(out, r)
		}
	}
	return out
}
