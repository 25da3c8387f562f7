package specialist

import (
	"context"
	"fmt"
	"strings"

	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/types"
)

// OTSecurity analyzes a project brief for operational-technology
// security implications: device hardening, encryption at rest, and
// network isolation from other municipal systems.
//
// Its risk baseline is fully deterministic; the collaborator only adds
// to it.
type OTSecurity struct {
	deps Deps
}

// NewOTSecurity constructs the OT security engineer.
func NewOTSecurity(deps Deps) *OTSecurity {
	return &OTSecurity{deps: deps}
}

// Name implements RiskSpecialist.
func (s *OTSecurity) Name() string { return "ot_security_engineer" }

// Topic implements RiskSpecialist.
func (s *OTSecurity) Topic() finding.Topic { return finding.TopicOTSecurity }

// Analyze implements RiskSpecialist.
func (s *OTSecurity) Analyze(ctx context.Context, brief types.ProjectBrief) (*finding.Finding, error) {
	query := fmt.Sprintf("%s security encryption edge smart streetlight OT security best practices network segmentation",
		strings.Join(brief.VendorHints, " "))
	evidence := s.deps.search(ctx, query, 3)

	risks := s.baselineRisks(brief)
	requirements := s.baselineRequirements()

	prompt := fmt.Sprintf(
		"You are an OT security engineer reviewing a smart-city deployment.\n"+
			"Project brief: %s\n"+
			"Already identified: encryption at rest, network segmentation.\n"+
			"Identify any additional operational-technology security risks. "+
			"Return an empty list if none.",
		briefSummary(brief))
	risks, _ = s.deps.enrichRisks(ctx, prompt, risks)

	return finding.New(
		finding.TopicOTSecurity,
		evidence,
		risks,
		requirements,
		"OT security analysis based on project brief and KB retrieval.",
		otConfidence(evidence),
	)
}

func (s *OTSecurity) baselineRisks(brief types.ProjectBrief) []finding.Risk {
	var risks []finding.Risk
	if brief.EdgeStorage() {
		risks = append(risks, finding.Risk{
			RiskID:      "RISK-OT-001",
			Description: "Weak or missing encryption at rest on edge devices.",
			Severity:    finding.SeverityHigh,
			Mitigation:  "Ensure all edge devices support and are configured with strong encryption (e.g., AES-256).",
		})
	}
	risks = append(risks, finding.Risk{
		RiskID:      "RISK-OT-002",
		Description: "Insufficient network segmentation from other city systems.",
		Severity:    finding.SeverityHigh,
		Mitigation:  "Isolate smart city sensor network from other municipal networks using VLANs or firewalls.",
	})
	return risks
}

func (s *OTSecurity) baselineRequirements() []finding.Requirement {
	return []finding.Requirement{
		{
			ReqID:       "REQ-OT-001",
			Description: "Encryption at rest and in transit must be enabled for all data.",
			IsMet:       false,
		},
		{
			ReqID:       "REQ-OT-002",
			Description: "Network segmentation and access control for devices must be implemented.",
			IsMet:       false,
		},
	}
}

// otConfidence scores on evidence alone: the OT baseline holds with or
// without collaborator output, so a populated knowledge base is the
// only uncertainty.
func otConfidence(evidence []finding.Evidence) float64 {
	if len(evidence) == 0 {
		return finding.DegradedConfidence
	}
	return 0.8
}
