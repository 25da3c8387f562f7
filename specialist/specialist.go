// Package specialist implements the domain analyzers of the assessment
// pipeline: site viability, the two value advocates (sustainability,
// connectivity), and the three risk specialists (public safety, privacy,
// OT security).
//
// Each risk specialist owns a deterministic baseline derived from the
// project brief, enriched with knowledge-base evidence and, when the
// text-generation collaborator is available, additional LLM-identified
// risks and requirements. Collaborator failure degrades the branch to
// lower-confidence, baseline-only output and never aborts the session.
package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/llm"
	"github.com/urbannexus/core/retrieval"
	"github.com/urbannexus/core/types"
)

// RiskSpecialist analyzes a project brief for one risk domain.
//
// Analyze always yields a valid Finding: implementations degrade
// internally on collaborator failure. A returned error indicates a
// programming error, not a collaborator outage; the orchestrator
// substitutes a degraded finding for it anyway.
type RiskSpecialist interface {
	// Name is the agent identity recorded in trace events.
	Name() string

	// Topic is the finding topic this specialist produces.
	Topic() finding.Topic

	// Analyze evaluates the project brief.
	Analyze(ctx context.Context, brief types.ProjectBrief) (*finding.Finding, error)
}

// ValueSpecialist proposes hardware deployments serving strategic goals.
type ValueSpecialist interface {
	// Name is the agent identity recorded in trace events.
	Name() string

	// Propose recommends deployments for the zone and goals.
	Propose(ctx context.Context, zone types.Zone, goals []types.Goal) ([]types.SolutionProposal, error)
}

// Deps carries the injected collaborators shared by all specialists.
// Collaborators are passed in at construction; specialists hold no
// process-wide clients.
type Deps struct {
	LLM      llm.StructuredClient
	Searcher retrieval.Searcher
	Log      *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Log == nil {
		return slog.Default()
	}
	return d.Log
}

func (d Deps) llmClient() llm.StructuredClient {
	if d.LLM == nil {
		return llm.Unavailable{}
	}
	return d.LLM
}

// search runs a best-effort retrieval; outages yield no evidence.
func (d Deps) search(ctx context.Context, query string, topK int) []finding.Evidence {
	if d.Searcher == nil {
		return nil
	}
	docs, err := d.Searcher.Search(ctx, query, topK)
	if err != nil {
		d.logger().Warn("retrieval failed, proceeding without evidence", "error", err)
		return nil
	}
	return retrieval.Evidence(docs)
}

// riskListSchema is the structured-output contract for LLM risk
// identification, shared by the risk specialists.
var riskListSchema = llm.Schema{
	"type": "object",
	"properties": map[string]any{
		"risks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"risk_id":     map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"severity":    map[string]any{"type": "string", "enum": []any{"High", "Medium", "Low"}},
					"mitigation":  map[string]any{"type": "string"},
				},
				"required": []any{"risk_id", "description", "severity", "mitigation"},
			},
		},
	},
	"required": []any{"risks"},
}

// requirementListSchema is the structured-output contract for LLM
// requirement identification.
var requirementListSchema = llm.Schema{
	"type": "object",
	"properties": map[string]any{
		"requirements": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"req_id":      map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"is_met":      map[string]any{"type": "boolean"},
				},
				"required": []any{"req_id", "description", "is_met"},
			},
		},
	},
	"required": []any{"requirements"},
}

type riskList struct {
	Risks []finding.Risk `json:"risks"`
}

type requirementList struct {
	Requirements []finding.Requirement `json:"requirements"`
}

// enrichRisks asks the LLM for additional risks and merges valid,
// novel entries into the baseline. Collaborator failure or malformed
// output leaves the baseline untouched.
func (d Deps) enrichRisks(ctx context.Context, prompt string, baseline []finding.Risk) ([]finding.Risk, bool) {
	raw, err := d.llmClient().GenerateStructured(ctx, prompt, riskListSchema)
	if err != nil || raw == nil {
		return baseline, false
	}
	var list riskList
	if ok, err := llm.Decode(raw, &list); !ok || err != nil {
		if err != nil {
			d.logger().Warn("discarding malformed risk response", "error", err)
		}
		return baseline, false
	}
	return mergeRisks(baseline, list.Risks, d.logger()), true
}

// enrichRequirements mirrors enrichRisks for requirements.
func (d Deps) enrichRequirements(ctx context.Context, prompt string, baseline []finding.Requirement) ([]finding.Requirement, bool) {
	raw, err := d.llmClient().GenerateStructured(ctx, prompt, requirementListSchema)
	if err != nil || raw == nil {
		return baseline, false
	}
	var list requirementList
	if ok, err := llm.Decode(raw, &list); !ok || err != nil {
		if err != nil {
			d.logger().Warn("discarding malformed requirement response", "error", err)
		}
		return baseline, false
	}
	return mergeRequirements(baseline, list.Requirements, d.logger()), true
}

func mergeRisks(baseline, extra []finding.Risk, log *slog.Logger) []finding.Risk {
	seen := make(map[string]bool, len(baseline))
	for _, r := range baseline {
		seen[r.RiskID] = true
	}
	out := baseline
	for _, r := range extra {
		if err := r.Validate(); err != nil {
			log.Warn("skipping invalid generated risk", "risk_id", r.RiskID, "error", err)
			continue
		}
		if seen[r.RiskID] {
			continue
		}
		seen[r.RiskID] = true
		out = append(out, r)
	}
	return out
}

func mergeRequirements(baseline, extra []finding.Requirement, log *slog.Logger) []finding.Requirement {
	seen := make(map[string]bool, len(baseline))
	for _, r := range baseline {
		seen[r.ReqID] = true
	}
	out := baseline
	for _, r := range extra {
		if err := r.Validate(); err != nil {
			log.Warn("skipping invalid generated requirement", "req_id", r.ReqID, "error", err)
			continue
		}
		if seen[r.ReqID] {
			continue
		}
		seen[r.ReqID] = true
		out = append(out, r)
	}
	return out
}

// briefSummary renders the project brief for prompts.
func briefSummary(brief types.ProjectBrief) string {
	data, err := json.Marshal(brief)
	if err != nil {
		return fmt.Sprintf("corridors=%s storage=%s", strings.Join(brief.Corridors, ","), brief.Storage)
	}
	return string(data)
}

// confidence applies the shared scoring policy: no evidence means the
// low-evidence fallback, a full analysis scores high, a partial one
// scores medium.
func confidence(evidence []finding.Evidence, risks []finding.Risk, requirements []finding.Requirement) float64 {
	if len(evidence) == 0 {
		return finding.DegradedConfidence
	}
	if len(risks) > 0 && len(requirements) > 0 {
		return 0.9
	}
	return 0.5
}
