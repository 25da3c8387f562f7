package specialist

import (
	"context"
	"fmt"
	"strings"

	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/types"
)

// PublicSafety analyzes a project brief for public safety implications:
// law-enforcement data handling, evidentiary integrity, and emergency
// response impact.
type PublicSafety struct {
	deps Deps
}

// NewPublicSafety constructs the public safety specialist.
func NewPublicSafety(deps Deps) *PublicSafety {
	return &PublicSafety{deps: deps}
}

// Name implements RiskSpecialist.
func (s *PublicSafety) Name() string { return "public_safety_specialist" }

// Topic implements RiskSpecialist.
func (s *PublicSafety) Topic() finding.Topic { return finding.TopicPublicSafety }

// Analyze implements RiskSpecialist.
func (s *PublicSafety) Analyze(ctx context.Context, brief types.ProjectBrief) (*finding.Finding, error) {
	query := fmt.Sprintf(
		"Public safety implications of a project. Corridors: %s. Sensors: %s. Storage: %s. Vendor hints: %s.",
		strings.Join(brief.Corridors, ", "),
		strings.Join(brief.EnabledSensors(), ", "),
		brief.Storage,
		strings.Join(brief.VendorHints, ", "))
	evidence := s.deps.search(ctx, query, 5)

	risks := s.baselineRisks(brief)
	requirements := s.baselineRequirements(brief)

	risksPrompt := fmt.Sprintf(
		"You are a public safety specialist reviewing a smart-city deployment.\n"+
			"Project brief: %s\n"+
			"Identify potential public safety risks beyond criminal justice "+
			"data handling and evidence integrity. Return an empty list if none.",
		briefSummary(brief))
	risks, _ = s.deps.enrichRisks(ctx, risksPrompt, risks)

	reqsPrompt := fmt.Sprintf(
		"You are a public safety specialist reviewing a smart-city deployment.\n"+
			"Project brief: %s\n"+
			"Identify public safety requirements the deployment must satisfy. "+
			"Return an empty list if none.",
		briefSummary(brief))
	requirements, _ = s.deps.enrichRequirements(ctx, reqsPrompt, requirements)

	return finding.New(
		finding.TopicPublicSafety,
		evidence,
		risks,
		requirements,
		"Public safety analysis based on project brief, KB retrieval, and LLM reasoning.",
		confidence(evidence, risks, requirements),
	)
}

func (s *PublicSafety) baselineRisks(brief types.ProjectBrief) []finding.Risk {
	var risks []finding.Risk
	if brief.SensorEnabled("alpr") {
		risks = append(risks, finding.Risk{
			RiskID:      "RISK-PS-001",
			Description: "License plate reads feed criminal justice workflows without a CJIS compliance path.",
			Severity:    finding.SeverityHigh,
			Mitigation:  "Route ALPR data through a CJIS-compliant pipeline with access logging before any law enforcement use.",
		})
	}
	if brief.SensorEnabled("video") {
		risks = append(risks, finding.Risk{
			RiskID:      "RISK-PS-002",
			Description: "Video used as evidence lacks chain-of-custody controls.",
			Severity:    finding.SeverityMedium,
			Mitigation:  "Hash recordings at capture and log every export with the requesting officer and case number.",
		})
	}
	return risks
}

func (s *PublicSafety) baselineRequirements(brief types.ProjectBrief) []finding.Requirement {
	var requirements []finding.Requirement
	if brief.SensorEnabled("alpr") {
		requirements = append(requirements, finding.Requirement{
			ReqID:       "REQ-PS-001",
			Description: "A CJIS compliance review must be completed before ALPR activation.",
			IsMet:       false,
		})
	}
	if brief.SensorEnabled("video") || brief.SensorEnabled("audio") {
		requirements = append(requirements, finding.Requirement{
			ReqID:       "REQ-PS-002",
			Description: "An evidence handling procedure must govern recorded material.",
			IsMet:       false,
		})
	}
	return requirements
}
