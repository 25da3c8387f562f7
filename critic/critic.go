// Package critic reviews specialist findings for completeness and
// soundness before they reach the validator.
//
// Review is two-layered: a deterministic completeness pass over the
// finding itself, and an LLM critique for contradictions the rules
// cannot see. The deterministic pass is authoritative downward: it can
// force revise but the collaborator can never upgrade a deficient
// finding to ok. Collaborator failure falls back to revise, so an
// unreviewable finding is always held for humans rather than waved
// through.
package critic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/llm"
	"github.com/urbannexus/core/state"
	"github.com/urbannexus/core/types"
)

// MinEvidence is the number of supporting evidence items a finding
// needs to pass the completeness check.
const MinEvidence = 3

// MinConfidence is the exclusive lower bound on finding confidence.
const MinConfidence = 0.4

// critiqueSchema is the structured-output contract for the LLM critique.
var critiqueSchema = llm.Schema{
	"type": "object",
	"properties": map[string]any{
		"status": map[string]any{"type": "string", "enum": []any{"ok", "revise"}},
		"missing_requirements": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"notes": map[string]any{"type": "string"},
	},
	"required": []any{"status", "missing_requirements", "notes"},
}

// Critic reviews findings. The zero value is not usable; construct with
// New.
type Critic struct {
	client llm.StructuredClient
	log    *slog.Logger
}

// New constructs a critic over the given collaborator. A nil client
// reviews deterministically and falls back to revise where the LLM
// layer would have run.
func New(client llm.StructuredClient, log *slog.Logger) *Critic {
	if client == nil {
		client = llm.Unavailable{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Critic{client: client, log: log}
}

// Name is the agent identity recorded in trace events.
func (c *Critic) Name() string { return "critic" }

// Critique reviews one finding against the project brief. It never
// fails: collaborator outage yields a revise critique.
func (c *Critic) Critique(ctx context.Context, f *finding.Finding, brief types.ProjectBrief) state.Critique {
	issues := completenessIssues(f, brief)

	generated, ok := c.generate(ctx, f, brief)
	if !ok {
		return state.Critique{
			Status:              types.CritiqueRevise,
			MissingRequirements: append(issues, "LLM critique failed."),
			Notes:               "Could not generate critique using LLM.",
		}
	}

	status := generated.Status
	if len(issues) > 0 {
		status = types.CritiqueRevise
	}
	return state.Critique{
		Status:              status,
		MissingRequirements: mergeIssues(issues, generated.MissingRequirements),
		Notes:               generated.Notes,
	}
}

// completenessIssues runs the deterministic review. Each returned entry
// describes one requirement the finding fails to meet.
func completenessIssues(f *finding.Finding, brief types.ProjectBrief) []string {
	var issues []string
	if len(f.Evidence) < MinEvidence {
		issues = append(issues, fmt.Sprintf("At least %d pieces of supporting evidence.", MinEvidence))
	}
	if len(f.Risks) == 0 {
		issues = append(issues, "At least one identified risk or an explicit no-risk rationale.")
	}
	if f.Confidence <= MinConfidence {
		issues = append(issues, fmt.Sprintf("A confidence score above %.1f.", MinConfidence))
	}
	if brief.SensorEnabled("alpr") && !mentionsAny(f.Requirements, "cjis") {
		issues = append(issues, "A CJIS compliance requirement covering ALPR data handling.")
	}
	if (brief.SensorEnabled("video") || brief.SensorEnabled("audio")) &&
		!mentionsAny(f.Requirements, "notice", "retention") {
		issues = append(issues, "Public notice and retention requirements for recording sensors.")
	}
	return issues
}

func mentionsAny(requirements []finding.Requirement, terms ...string) bool {
	for _, r := range requirements {
		desc := strings.ToLower(r.Description)
		for _, term := range terms {
			if strings.Contains(desc, term) {
				return true
			}
		}
	}
	return false
}

func mergeIssues(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// generate runs the LLM critique. The second return is false when no
// usable critique came back.
func (c *Critic) generate(ctx context.Context, f *finding.Finding, brief types.ProjectBrief) (state.Critique, bool) {
	findingJSON, err := json.Marshal(f)
	if err != nil {
		return state.Critique{}, false
	}
	briefJSON, err := json.Marshal(brief)
	if err != nil {
		return state.Critique{}, false
	}

	prompt := fmt.Sprintf(
		"You are reviewing a specialist finding for a smart-city deployment.\n"+
			"Identify issues, contradictions, logical errors, missing information, or biases.\n"+
			"Project brief: %s\n"+
			"Specialist finding: %s\n"+
			"Check: sufficient evidence (at least %d pieces), risks clearly identified, "+
			"confidence above %.1f, and sensor-specific requirements "+
			"(CJIS for ALPR, public notice and retention for video or audio).\n"+
			"Output status ok or revise with missing requirements and notes.",
		briefJSON, findingJSON, MinEvidence, MinConfidence)

	raw, err := c.client.GenerateStructured(ctx, prompt, critiqueSchema)
	if err != nil || raw == nil {
		if err != nil {
			c.log.Warn("critique generation failed", "topic", f.Topic, "error", err)
		}
		return state.Critique{}, false
	}

	var out state.Critique
	if ok, err := llm.Decode(raw, &out); !ok || err != nil {
		if err != nil {
			c.log.Warn("discarding malformed critique", "topic", f.Topic, "error", err)
		}
		return state.Critique{}, false
	}
	if !out.Status.IsValid() {
		c.log.Warn("discarding critique with unknown status", "topic", f.Topic, "status", out.Status)
		return state.Critique{}, false
	}
	return out, true
}
