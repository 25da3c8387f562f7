package specialist

import (
	"context"
	"fmt"
	"strings"

	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/types"
)

// Privacy analyzes a project brief for privacy implications:
// surveillance surface, data minimization, retention, and the public
// notice obligations that attach to personally identifiable data.
type Privacy struct {
	deps Deps
}

// NewPrivacy constructs the privacy counsel.
func NewPrivacy(deps Deps) *Privacy {
	return &Privacy{deps: deps}
}

// Name implements RiskSpecialist.
func (s *Privacy) Name() string { return "privacy_counsel" }

// Topic implements RiskSpecialist.
func (s *Privacy) Topic() finding.Topic { return finding.TopicPrivacy }

// Analyze implements RiskSpecialist.
func (s *Privacy) Analyze(ctx context.Context, brief types.ProjectBrief) (*finding.Finding, error) {
	query := fmt.Sprintf(
		"Privacy implications of a project. Corridors: %s. Sensors: %s. Storage: %s. Vendor hints: %s.",
		strings.Join(brief.Corridors, ", "),
		strings.Join(brief.EnabledSensors(), ", "),
		brief.Storage,
		strings.Join(brief.VendorHints, ", "))
	evidence := s.deps.search(ctx, query, 5)

	risks := s.baselineRisks(brief)
	requirements := s.baselineRequirements(brief)

	risksPrompt := fmt.Sprintf(
		"You are a privacy counsel reviewing a smart-city deployment.\n"+
			"Project brief: %s\n"+
			"Identify potential privacy risks beyond data minimization, "+
			"retention, and public notice. Return an empty list if none.",
		briefSummary(brief))
	risks, _ = s.deps.enrichRisks(ctx, risksPrompt, risks)

	reqsPrompt := fmt.Sprintf(
		"You are a privacy counsel reviewing a smart-city deployment.\n"+
			"Project brief: %s\n"+
			"Identify privacy requirements the deployment must satisfy. "+
			"Return an empty list if none.",
		briefSummary(brief))
	requirements, _ = s.deps.enrichRequirements(ctx, reqsPrompt, requirements)

	return finding.New(
		finding.TopicPrivacy,
		evidence,
		risks,
		requirements,
		"Privacy analysis based on project brief and KB retrieval.",
		confidence(evidence, risks, requirements),
	)
}

func (s *Privacy) baselineRisks(brief types.ProjectBrief) []finding.Risk {
	var risks []finding.Risk
	if brief.SensorEnabled("video") {
		risks = append(risks,
			finding.Risk{
				RiskID:      "RISK-PRIV-001",
				Description: "Continuous video capture collects identifiable imagery of the public without data minimization controls.",
				Severity:    finding.SeverityMedium,
				Mitigation:  "Restrict capture to the minimum field of view needed, mask uninvolved areas, and enforce a short retention window.",
			},
			finding.Risk{
				RiskID:      "RISK-PRIV-002",
				Description: "No community notice of PII collection in public corridors.",
				Severity:    finding.SeverityMedium,
				Mitigation:  "Post signage at corridor entry points and publish a collection notice before activation.",
			})
	}
	if brief.SensorEnabled("audio") {
		risks = append(risks, finding.Risk{
			RiskID:      "RISK-PRIV-003",
			Description: "Ambient audio capture may record private conversations in public space.",
			Severity:    finding.SeverityHigh,
			Mitigation:  "Limit audio processing to acoustic event classification on-device; never retain raw audio.",
		})
	}
	if brief.SensorEnabled("alpr") {
		risks = append(risks, finding.Risk{
			RiskID:      "RISK-PRIV-004",
			Description: "License plate capture builds a location history of individual vehicles.",
			Severity:    finding.SeverityHigh,
			Mitigation:  "Purge non-hit plate reads on a fixed schedule and restrict queries to authorized investigations.",
		})
	}
	return risks
}

func (s *Privacy) baselineRequirements(brief types.ProjectBrief) []finding.Requirement {
	if len(brief.EnabledSensors()) == 0 {
		return nil
	}
	return []finding.Requirement{
		{
			ReqID:       "REQ-PRIV-001",
			Description: "A public notice describing what is collected and why must be published before activation.",
			IsMet:       false,
		},
		{
			ReqID:       "REQ-PRIV-002",
			Description: "A written retention and deletion policy must cover every sensor data stream.",
			IsMet:       false,
		},
	}
}
