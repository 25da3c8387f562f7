// Package validator computes the governed per-finding decision.
//
// The decision follows a fixed order of authority. A revise critique
// forces HOLD unconditionally. Triggered governance rules impose a
// decision floor that later steps can only tighten. An unmitigated
// High severity risk floors the decision at MITIGATE. Only then is the
// collaborator's opinion consulted, and only to tighten further. No
// collaborator output, or no collaborator at all, leaves the floored
// decision standing; with no floor in play the default is GO.
package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/llm"
	"github.com/urbannexus/core/rule"
	"github.com/urbannexus/core/state"
	"github.com/urbannexus/core/types"
)

// validationSchema is the structured-output contract for the LLM
// validation opinion.
var validationSchema = llm.Schema{
	"type": "object",
	"properties": map[string]any{
		"status": map[string]any{"type": "string", "enum": []any{"GO", "HOLD", "MITIGATE"}},
		"reason": map[string]any{"type": "string"},
	},
	"required": []any{"status", "reason"},
}

type validationOpinion struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Validator applies the governance rule set to findings. Construct with
// New; the zero value is not usable.
type Validator struct {
	rules  *rule.RuleSet
	eval   *rule.Evaluator
	client llm.StructuredClient
	log    *slog.Logger
}

// New constructs a validator over a validated rule set. A nil client
// skips the collaborator step; a nil evaluator gets a default one.
func New(rules *rule.RuleSet, eval *rule.Evaluator, client llm.StructuredClient, log *slog.Logger) *Validator {
	if eval == nil {
		eval = rule.NewEvaluator()
	}
	if client == nil {
		client = llm.Unavailable{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Validator{rules: rules, eval: eval, client: client, log: log}
}

// Name is the agent identity recorded in trace events.
func (v *Validator) Name() string { return "validator" }

// Validate computes the governed decision for one finding. The snapshot
// is the flattened workflow state the rule predicates read. Validate
// never fails; every path yields a Validation with a reason.
func (v *Validator) Validate(ctx context.Context, f *finding.Finding, crit state.Critique, snapshot map[string]any) state.Validation {
	triggered := v.eval.EvaluateAll(ctx, v.rules, snapshot)
	res := rule.Resolve(triggered)

	if crit.Status == types.CritiqueRevise {
		return state.Validation{
			Status:       types.DecisionHold,
			Reason:       reviseReason(crit),
			RulesApplied: res.RuleIDs,
		}
	}

	floor := types.DecisionGo
	reason := "No governance rule or unmitigated risk constrains this finding."

	if types.CompareDecisions(res.DecisionFloor, floor) > 0 {
		floor = res.DecisionFloor
		reason = fmt.Sprintf("Rule %s: %s", res.Winner.RuleID, res.Winner.RequiredAction)
	}

	if unmitigated := f.UnmitigatedHighRisks(); len(unmitigated) > 0 &&
		types.CompareDecisions(types.DecisionMitigate, floor) > 0 {
		floor = types.DecisionMitigate
		reason = fmt.Sprintf("Unmitigated High severity risk %s requires mitigation before deployment.",
			unmitigated[0].RiskID)
	}

	if opinion, ok := v.generate(ctx, f, crit, triggered); ok {
		if types.CompareDecisions(opinion.decision, floor) > 0 {
			floor = opinion.decision
			reason = opinion.reason
		}
	}

	return state.Validation{
		Status:       floor,
		Reason:       reason,
		RulesApplied: res.RuleIDs,
	}
}

func reviseReason(crit state.Critique) string {
	if len(crit.MissingRequirements) == 0 {
		return "Critic requested revision."
	}
	return "Critic requested revision: " + strings.Join(crit.MissingRequirements, " ")
}

type boundOpinion struct {
	decision types.Decision
	reason   string
}

// generate asks the collaborator for a validation opinion. Invalid or
// absent output is reported as ok=false and ignored by the caller.
func (v *Validator) generate(ctx context.Context, f *finding.Finding, crit state.Critique, triggered []rule.Rule) (boundOpinion, bool) {
	findingJSON, err := json.Marshal(f)
	if err != nil {
		return boundOpinion{}, false
	}
	critJSON, err := json.Marshal(crit)
	if err != nil {
		return boundOpinion{}, false
	}

	var rules strings.Builder
	for _, r := range triggered {
		fmt.Fprintf(&rules, "- %s: %s (required action: %s)\n", r.RuleID, r.Description, r.RequiredAction)
	}

	prompt := fmt.Sprintf(
		"You are determining the governance status (GO, HOLD, MITIGATE) for a "+
			"smart-city deployment finding.\n"+
			"Specialist finding: %s\n"+
			"Critic output: %s\n"+
			"Triggered governance rules:\n%s"+
			"If any High severity risk is unmitigated, the status must be at "+
			"least MITIGATE. Output the status with a reason.",
		findingJSON, critJSON, rules.String())

	raw, err := v.client.GenerateStructured(ctx, prompt, validationSchema)
	if err != nil || raw == nil {
		if err != nil {
			v.log.Warn("validation opinion failed", "topic", f.Topic, "error", err)
		}
		return boundOpinion{}, false
	}

	var out validationOpinion
	if ok, err := llm.Decode(raw, &out); !ok || err != nil {
		if err != nil {
			v.log.Warn("discarding malformed validation opinion", "topic", f.Topic, "error", err)
		}
		return boundOpinion{}, false
	}
	decision, err := types.ParseDecision(out.Status)
	if err != nil {
		v.log.Warn("discarding validation opinion with unknown status", "topic", f.Topic, "status", out.Status)
		return boundOpinion{}, false
	}
	return boundOpinion{decision: decision, reason: out.Reason}, true
}
