package rule

import (
	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/state"
)

// Standard smart-city governance rules for the go/no-go deployment use
// case. These are the process defaults; deployments may replace them with
// a YAML rule file covering the same closed predicate vocabulary.

// CJISCompliance requires a CJIS compliance path whenever the proposal
// enables automated license plate readers.
var CJISCompliance = Rule{
	RuleID:          "SC-CJIS-001",
	Description:     "ALPR or other public-safety data collection requires a CJIS compliance path.",
	Trigger:         Equals(state.KeyBriefSensorPrefix+"alpr", true),
	RequiredAction:  "Confirm that a CJIS compliance plan is in place before deployment.",
	Effect:          EffectHold,
	OverrideAllowed: false,
	Severity:        SeverityHigh,
	Priority:        100,
}

// SunshineLaw requires a FOIA-ready audit trace for deployments in
// municipalities subject to public-records laws.
var SunshineLaw = Rule{
	RuleID:      "SC-SUNSHINE-001",
	Description: "Deployments subject to public-records laws need a disclosure-ready audit trace.",
	Trigger: Any(
		Contains(state.KeyBriefCorridors, "florida"),
		Contains(state.KeyZoneName, "florida"),
	),
	RequiredAction:  "Configure the audit trace for public disclosure with PII redaction.",
	Effect:          EffectMitigate,
	OverrideAllowed: false,
	Severity:        SeverityMedium,
	Priority:        60,
}

// CommunityNotice requires a community notice and privacy impact
// assessment whenever cameras or microphones collect PII.
var CommunityNotice = Rule{
	RuleID:      "SC-NIST-RMF-001",
	Description: "Camera or microphone PII collection requires community notice and a privacy impact assessment.",
	Trigger: Any(
		Equals(state.KeyBriefSensorPrefix+"video", true),
		Equals(state.KeyBriefSensorPrefix+"audio", true),
	),
	RequiredAction:  "Complete a community notice plan and privacy impact assessment.",
	Effect:          EffectMitigate,
	OverrideAllowed: false,
	Severity:        SeverityHigh,
	Priority:        90,
}

// LowConfidenceEscalates flags any specialist finding whose confidence
// falls below the review threshold for human escalation.
var LowConfidenceEscalates = Rule{
	RuleID:      "SC-CONF-001",
	Description: "Specialist confidence below 0.4 requires human review of the finding.",
	Trigger: Any(
		Below(state.Key(finding.TopicPublicSafety, state.SuffixConfidence), 0.4),
		Below(state.Key(finding.TopicPrivacy, state.SuffixConfidence), 0.4),
		Below(state.Key(finding.TopicOTSecurity, state.SuffixConfidence), 0.4),
	),
	RequiredAction:  "Escalate the low-confidence finding for human review.",
	Effect:          EffectEscalate,
	OverrideAllowed: true,
	Severity:        SeverityMedium,
	Priority:        40,
}

// HighRiskRequiresMitigation floors the decision at MITIGATE whenever
// any High-severity risk is present: such a deployment may proceed only
// under its mitigation plan, never as an unconditional GO. Risks that
// then remain unmitigated additionally force human review through the
// synthesis policy.
var HighRiskRequiresMitigation = Rule{
	RuleID:          "SC-RISK-001",
	Description:     "High-severity risks limit the decision to a mitigation-conditioned GO at best.",
	Trigger:         AtLeast(state.KeyCombinedHighRiskCount, 1),
	RequiredAction:  "Apply mitigations to every High-severity risk before proceeding.",
	Effect:          EffectMitigate,
	OverrideAllowed: false,
	Severity:        SeverityHigh,
	Priority:        80,
}

// SmartCityRules returns the validated standard rule set.
func SmartCityRules() *RuleSet {
	rs, err := NewRuleSet([]Rule{
		CJISCompliance,
		SunshineLaw,
		CommunityNotice,
		LowConfidenceEscalates,
		HighRiskRequiresMitigation,
	})
	if err != nil {
		// The standard set is defined in code and covered by tests;
		// failing validation here is a programming error.
		panic(err)
	}
	return rs
}
