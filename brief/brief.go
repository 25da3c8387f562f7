// Package brief defines the DecisionBrief, the terminal artifact of an
// assessment session, and the synthesis that produces it from the
// per-topic validator outputs.
package brief

import (
	"fmt"

	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/rule"
	"github.com/urbannexus/core/state"
	"github.com/urbannexus/core/types"
)

// DecisionBrief aggregates every finding, the combined risk picture,
// and the governed overall decision for one session. It is produced
// exactly once, at synthesis.
type DecisionBrief struct {
	ProjectBrief types.ProjectBrief `json:"project_brief"`

	ZoneContext *types.Zone        `json:"zone_context,omitempty"`
	Goals       []types.Goal       `json:"goals"`
	Constraints []types.Constraint `json:"constraints"`

	PublicSafety *finding.Finding `json:"public_safety,omitempty"`
	Privacy      *finding.Finding `json:"privacy,omitempty"`
	OTSecurity   *finding.Finding `json:"ot_security,omitempty"`

	CombinedRisks        []finding.Risk        `json:"combined_risks"`
	CombinedRequirements []finding.Requirement `json:"combined_requirements"`

	FinalDeploymentPlan []types.SolutionProposal `json:"final_deployment_plan"`

	OverallDecision   types.Decision `json:"overall_decision"`
	OverallConfidence float64        `json:"overall_confidence"`
	NeedsHumanReview  bool           `json:"needs_human_review"`
	HumanReviewNote   string         `json:"human_review_note,omitempty"`
}

// Validate checks the brief's structural invariants.
func (b *DecisionBrief) Validate() error {
	if !b.OverallDecision.IsValid() {
		return fmt.Errorf("invalid overall decision: %s", b.OverallDecision)
	}
	if b.OverallConfidence < 0 || b.OverallConfidence > 1 {
		return fmt.Errorf("overall confidence out of range: %v", b.OverallConfidence)
	}
	if b.OverallDecision != types.DecisionGo && b.HumanReviewNote == "" {
		return fmt.Errorf("a non-GO decision requires a human review note")
	}
	for _, f := range []*finding.Finding{b.PublicSafety, b.Privacy, b.OTSecurity} {
		if f == nil {
			continue
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("invalid %s finding: %w", f.Topic, err)
		}
	}
	return nil
}

// Synthesize builds the DecisionBrief from a completed assessment.
// res is the rule resolution computed over the final state: its
// decision floor binds the overall decision, so a non-overridable rule
// that only triggers on late-stage keys still constrains the outcome;
// a triggered escalate rule forces human review without constraining
// the decision itself.
func Synthesize(a *state.Assessment, res rule.Resolution) *DecisionBrief {
	b := &DecisionBrief{
		Goals:                a.Goals,
		Constraints:          a.Constraints,
		ZoneContext:          a.Zone,
		PublicSafety:         a.Findings[finding.TopicPublicSafety],
		Privacy:              a.Findings[finding.TopicPrivacy],
		OTSecurity:           a.Findings[finding.TopicOTSecurity],
		CombinedRisks:        a.CombinedRisks(),
		CombinedRequirements: a.CombinedRequirements(),
		FinalDeploymentPlan:  a.Proposals,
	}
	if a.Brief != nil {
		b.ProjectBrief = *a.Brief
	}

	if !res.DecisionFloor.IsValid() {
		res.DecisionFloor = types.DecisionGo
	}
	validated := overallDecision(a)
	b.OverallDecision = types.MostRestrictive(validated, res.DecisionFloor)
	b.OverallConfidence = overallConfidence(a)
	b.NeedsHumanReview, b.HumanReviewNote = reviewPolicy(a, b, res, validated)
	return b
}

// overallDecision is the most restrictive per-topic validator status.
// A topic that never reached validation counts as HOLD: the pipeline
// stopped before clearing it.
func overallDecision(a *state.Assessment) types.Decision {
	decisions := make([]types.Decision, 0, len(state.RiskTopics))
	for _, topic := range state.RiskTopics {
		v := a.Validations[topic]
		if v == nil {
			decisions = append(decisions, types.DecisionHold)
			continue
		}
		decisions = append(decisions, v.Status)
	}
	return types.MostRestrictive(decisions...)
}

// overallConfidence is the minimum confidence across findings: the
// chain is only as trustworthy as its weakest finding. A missing
// finding counts as zero.
func overallConfidence(a *state.Assessment) float64 {
	min := 1.0
	for _, topic := range state.RiskTopics {
		f := a.Findings[topic]
		if f == nil {
			return 0
		}
		if f.Confidence < min {
			min = f.Confidence
		}
	}
	return min
}

func unmitigatedHighCount(risks []finding.Risk) int {
	n := 0
	for _, r := range risks {
		if r.Severity == finding.SeverityHigh && !r.IsMitigated() {
			n++
		}
	}
	return n
}

// reviewPolicy decides needs_human_review and composes the note.
// HOLD always requires review; MITIGATE requires review when a High
// severity risk remains unmitigated; a triggered escalate rule requires
// review regardless of decision. Every non-GO outcome carries a note,
// including the binding rule when the rule floor tightened the
// validated outcome.
func reviewPolicy(a *state.Assessment, b *DecisionBrief, res rule.Resolution, validated types.Decision) (bool, string) {
	unmitigated := unmitigatedHighCount(b.CombinedRisks)

	review := res.Escalate
	switch b.OverallDecision {
	case types.DecisionHold:
		review = true
	case types.DecisionMitigate:
		if unmitigated > 0 {
			review = true
		}
	}

	if b.OverallDecision == types.DecisionGo {
		if review {
			return true, "A governance rule escalated this assessment for human review."
		}
		return false, ""
	}

	note := fmt.Sprintf("Overall decision is %s.", b.OverallDecision)
	for _, topic := range state.RiskTopics {
		v := a.Validations[topic]
		if v == nil {
			note += fmt.Sprintf(" The %s branch did not complete validation.", topic)
			continue
		}
		if v.Status != types.DecisionGo {
			note += fmt.Sprintf(" %s: %s", topic, v.Reason)
		}
	}
	if types.CompareDecisions(res.DecisionFloor, validated) > 0 && res.Winner != nil {
		note += fmt.Sprintf(" Rule %s requires at least %s: %s",
			res.Winner.RuleID, res.DecisionFloor, res.Winner.RequiredAction)
	}
	if unmitigated > 0 {
		note += fmt.Sprintf(" %d High severity risk(s) remain unmitigated.", unmitigated)
	}
	return review, note
}
