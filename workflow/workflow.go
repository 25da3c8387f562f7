// Package workflow runs the assessment pipeline: site assessment, the
// parallel value and risk analyses, per-finding critic and validator
// stages gated by checkpoints, and the final synthesis into a
// DecisionBrief.
//
// The orchestrator is the single writer of the session trace. Fan-out
// branches compute in parallel under a per-branch budget, but every
// stage result is collected at the fan-in join and appended to the
// trace from the coordinating goroutine. A failed checkpoint records
// its reasons and stops the pipeline; the session still synthesizes,
// and the untouched branches surface as HOLD.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/urbannexus/core/brief"
	"github.com/urbannexus/core/checkpoint"
	"github.com/urbannexus/core/critic"
	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/rule"
	"github.com/urbannexus/core/specialist"
	"github.com/urbannexus/core/state"
	"github.com/urbannexus/core/trace"
	"github.com/urbannexus/core/types"
	"github.com/urbannexus/core/validator"
)

// Workflow stage names as recorded in trace events.
const (
	StageStart          = "START"
	StageSiteAssessment = "SITE_ASSESSMENT"
	StageValueAnalysis  = "VALUE_ANALYSIS"
	StageRiskAnalysis   = "RISK_ANALYSIS"
	StageCritic         = "CRITIC"
	StageValidator      = "VALIDATOR"
	StageSynthesis      = "SYNTHESIS"
	StageEnd            = "END"
)

// DefaultBranchBudget bounds how long one fan-out branch may run before
// its context expires and the branch degrades.
const DefaultBranchBudget = 90 * time.Second

// EventSink receives session events as they are appended to the trace,
// and the terminal decision brief. Implementations must not block;
// delivery failures are the sink's problem, never the pipeline's.
type EventSink interface {
	StageEvent(ctx context.Context, e trace.Event)
	Decision(ctx context.Context, sessionID, traceID string, b *brief.DecisionBrief)
}

// Input describes one assessment request.
type Input struct {
	ZoneID      string
	Goals       []types.Goal
	Constraints []types.Constraint

	// Brief, when set, is used as the risk-analysis project brief.
	// When nil a brief is derived from the zone and value proposals.
	Brief *types.ProjectBrief
}

// Result is the outcome of one session.
type Result struct {
	SessionID string
	Brief     *brief.DecisionBrief
	Trace     *trace.Trace
	Export    trace.Export
}

// Config assembles an Orchestrator. Site, Critic, and Validator are
// required; empty specialist lists run the corresponding stage as a
// no-op.
type Config struct {
	Site  *specialist.SiteViability
	Value []specialist.ValueSpecialist
	Risk  []specialist.RiskSpecialist

	Critic    *critic.Critic
	Validator *validator.Validator

	// Rules is the governance rule set consulted at synthesis for
	// escalation. Defaults to the standard smart-city set.
	Rules *rule.RuleSet

	// BranchBudget bounds each fan-out branch. Zero means
	// DefaultBranchBudget.
	BranchBudget time.Duration

	Sink   EventSink
	Logger *slog.Logger
}

// Orchestrator coordinates one or more assessment sessions. Safe for
// concurrent Run calls; all per-session state lives on the stack.
type Orchestrator struct {
	cfg    Config
	eval   *rule.Evaluator
	tracer oteltrace.Tracer
	log    *slog.Logger
}

// New validates the configuration and builds an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Site == nil {
		return nil, fmt.Errorf("workflow: site viability agent is required")
	}
	if cfg.Critic == nil {
		return nil, fmt.Errorf("workflow: critic is required")
	}
	if cfg.Validator == nil {
		return nil, fmt.Errorf("workflow: validator is required")
	}
	if cfg.Rules == nil {
		cfg.Rules = rule.SmartCityRules()
	}
	if cfg.BranchBudget <= 0 {
		cfg.BranchBudget = DefaultBranchBudget
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		cfg:    cfg,
		eval:   rule.NewEvaluator(rule.WithLogger(cfg.Logger)),
		tracer: otel.Tracer("github.com/urbannexus/core/workflow"),
		log:    cfg.Logger,
	}, nil
}

// Run executes one assessment session end to end. The returned error is
// reserved for internal invariant violations (a malformed event); all
// domain-level failure degrades into the DecisionBrief instead.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Result, error) {
	sessionID := uuid.NewString()
	a := state.NewAssessment(sessionID)
	a.Goals = in.Goals
	a.Constraints = in.Constraints

	tr := trace.New(map[string]any{
		"zone_id":    in.ZoneID,
		"goal_count": len(in.Goals),
	})
	log := o.log.With("session_id", sessionID, "zone_id", in.ZoneID)
	log.Info("assessment session started")

	if err := o.emit(ctx, tr, sessionID, StageStart, "orchestrator", "session_started",
		map[string]any{"zone_id": in.ZoneID}, nil); err != nil {
		return nil, err
	}

	if err := o.siteStage(ctx, tr, a, in.ZoneID); err != nil {
		return nil, err
	}
	if err := o.valueStage(ctx, tr, a); err != nil {
		return nil, err
	}

	if in.Brief != nil {
		a.Brief = in.Brief
	} else {
		derived := DeriveBrief(a)
		a.Brief = &derived
	}

	if err := o.riskStage(ctx, tr, a); err != nil {
		return nil, err
	}

	reviewed, err := o.reviewStages(ctx, tr, a)
	if err != nil {
		return nil, err
	}
	if !reviewed {
		log.Warn("review stages gated; synthesizing a hold")
	}

	return o.synthesize(ctx, tr, a, log)
}

// emit appends one stage event to the trace and forwards it to the
// sink. Append errors are programming errors and abort the session.
func (o *Orchestrator) emit(ctx context.Context, tr *trace.Trace, sessionID, step, agent, action string,
	input, output map[string]any, mods ...func(trace.Event) trace.Event) error {
	e, err := trace.NewEvent(sessionID, step, agent, action, input, output)
	if err != nil {
		return fmt.Errorf("workflow: build %s event: %w", step, err)
	}
	for _, mod := range mods {
		e = mod(e)
	}
	if err := tr.Append(e); err != nil {
		return fmt.Errorf("workflow: append %s event: %w", step, err)
	}
	if o.cfg.Sink != nil {
		o.cfg.Sink.StageEvent(ctx, e)
	}
	return nil
}

func (o *Orchestrator) siteStage(ctx context.Context, tr *trace.Trace, a *state.Assessment, zoneID string) error {
	ctx, span := o.tracer.Start(ctx, "workflow.site_assessment")
	defer span.End()

	zone := o.cfg.Site.Assess(ctx, zoneID)
	a.Zone = &zone

	return o.emit(ctx, tr, a.SessionID, StageSiteAssessment, o.cfg.Site.Name(), "zone_resolved",
		map[string]any{"zone_id": zoneID},
		map[string]any{"zone_name": zone.Name, "attribute_count": len(zone.Attributes)})
}

// valueStage fans out the value specialists under the branch budget.
// Branch results land in per-branch slots; events are appended only
// after the join, from this goroutine.
func (o *Orchestrator) valueStage(ctx context.Context, tr *trace.Trace, a *state.Assessment) error {
	ctx, span := o.tracer.Start(ctx, "workflow.value_analysis")
	defer span.End()

	results := make([][]types.SolutionProposal, len(o.cfg.Value))
	g, gctx := errgroup.WithContext(ctx)
	for i, sp := range o.cfg.Value {
		g.Go(func() error {
			bctx, cancel := context.WithTimeout(gctx, o.cfg.BranchBudget)
			defer cancel()
			proposals, err := sp.Propose(bctx, *a.Zone, a.Goals)
			if err != nil {
				o.log.Warn("value branch degraded", "specialist", sp.Name(), "error", err)
				return nil
			}
			results[i] = proposals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, sp := range o.cfg.Value {
		a.Proposals = append(a.Proposals, results[i]...)
		if err := o.emit(ctx, tr, a.SessionID, StageValueAnalysis, sp.Name(), "proposals_generated",
			nil, map[string]any{"proposal_count": len(results[i])}); err != nil {
			return err
		}
	}
	return nil
}

// riskStage fans out the risk specialists. A branch that errors, or
// whose budget expires, contributes the deterministic degraded finding
// for its topic.
func (o *Orchestrator) riskStage(ctx context.Context, tr *trace.Trace, a *state.Assessment) error {
	ctx, span := o.tracer.Start(ctx, "workflow.risk_analysis")
	defer span.End()

	findings := make([]*finding.Finding, len(o.cfg.Risk))
	g, gctx := errgroup.WithContext(ctx)
	for i, sp := range o.cfg.Risk {
		g.Go(func() error {
			bctx, cancel := context.WithTimeout(gctx, o.cfg.BranchBudget)
			defer cancel()
			f, err := sp.Analyze(bctx, *a.Brief)
			if err != nil || f == nil {
				o.log.Warn("risk branch degraded", "specialist", sp.Name(), "error", err)
				f = finding.Degraded(sp.Topic(), "specialist analysis produced no usable finding")
			}
			findings[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, sp := range o.cfg.Risk {
		f := findings[i]
		a.Findings[f.Topic] = f
		if err := o.emit(ctx, tr, a.SessionID, StageRiskAnalysis, sp.Name(), "finding_produced",
			map[string]any{"storage": a.Brief.Storage},
			map[string]any{
				"topic":      string(f.Topic),
				"confidence": f.Confidence,
				"risk_count": len(f.Risks),
			}); err != nil {
			return err
		}
	}
	return nil
}

// reviewStages runs the checkpoint-gated critic and validator passes.
// The bool reports whether review ran to completion; a gated stage
// leaves the remaining topics unvalidated, which synthesis reads as
// HOLD.
func (o *Orchestrator) reviewStages(ctx context.Context, tr *trace.Trace, a *state.Assessment) (bool, error) {
	ctx, span := o.tracer.Start(ctx, "workflow.review")
	defer span.End()

	gate := checkpoint.CriticGate()
	if ok, _, err := o.checkGate(ctx, tr, a, gate, StageCritic); err != nil || !ok {
		return false, err
	}

	for _, topic := range state.RiskTopics {
		f := a.Findings[topic]
		if f == nil {
			continue
		}

		crit := o.cfg.Critic.Critique(ctx, f, *a.Brief)
		a.Critiques[topic] = &crit
		if err := o.emit(ctx, tr, a.SessionID, StageCritic, o.cfg.Critic.Name(), "finding_reviewed",
			map[string]any{"topic": string(topic)},
			map[string]any{
				"status":        string(crit.Status),
				"missing_count": len(crit.MissingRequirements),
			}); err != nil {
			return false, err
		}

		vgate := checkpoint.ValidatorGate(topic)
		if ok, _, err := o.checkGate(ctx, tr, a, vgate, StageValidator); err != nil || !ok {
			return false, err
		}

		v := o.cfg.Validator.Validate(ctx, f, crit, a.Snapshot())
		a.Validations[topic] = &v
		if err := o.emit(ctx, tr, a.SessionID, StageValidator, o.cfg.Validator.Name(), "finding_validated",
			map[string]any{"topic": string(topic), "critique_status": string(crit.Status)},
			map[string]any{"reason": v.Reason},
			func(e trace.Event) trace.Event {
				return e.WithRules(v.RulesApplied).WithDecision(v.Status)
			}); err != nil {
			return false, err
		}
	}
	return true, nil
}

// checkGate evaluates a checkpoint and records the outcome. A failed
// gate emits an event carrying the failure reasons and a HOLD decision
// state.
func (o *Orchestrator) checkGate(ctx context.Context, tr *trace.Trace, a *state.Assessment,
	cp checkpoint.Checkpoint, step string) (bool, []string, error) {
	ok, reasons := cp.CanPass(ctx, o.eval, a.Snapshot())
	if ok {
		err := o.emit(ctx, tr, a.SessionID, step, "orchestrator", "checkpoint_passed",
			nil, map[string]any{"checkpoint_id": cp.CheckpointID},
			func(e trace.Event) trace.Event { return e.WithCheckpoint(cp.CheckpointID) })
		return true, nil, err
	}

	o.log.Warn("checkpoint failed", "checkpoint_id", cp.CheckpointID, "reasons", strings.Join(reasons, "; "))
	err := o.emit(ctx, tr, a.SessionID, step, "orchestrator", "checkpoint_failed",
		nil, map[string]any{"checkpoint_id": cp.CheckpointID, "reasons": strings.Join(reasons, "; ")},
		func(e trace.Event) trace.Event { return e.WithDecision(types.DecisionHold) })
	return false, reasons, err
}

func (o *Orchestrator) synthesize(ctx context.Context, tr *trace.Trace, a *state.Assessment, log *slog.Logger) (*Result, error) {
	ctx, span := o.tracer.Start(ctx, "workflow.synthesis")
	defer span.End()

	triggered := o.eval.EvaluateAll(ctx, o.cfg.Rules, a.Snapshot())
	res := rule.Resolve(triggered)

	b := brief.Synthesize(a, res)
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("workflow: synthesized brief invalid: %w", err)
	}

	if err := o.emit(ctx, tr, a.SessionID, StageSynthesis, "orchestrator", "brief_synthesized",
		nil, map[string]any{
			"overall_confidence": b.OverallConfidence,
			"needs_human_review": b.NeedsHumanReview,
		},
		func(e trace.Event) trace.Event {
			return e.WithRules(res.RuleIDs).WithDecision(b.OverallDecision)
		}); err != nil {
		return nil, err
	}
	if err := o.emit(ctx, tr, a.SessionID, StageEnd, "orchestrator", "session_complete",
		nil, nil,
		func(e trace.Event) trace.Event { return e.WithDecision(b.OverallDecision) }); err != nil {
		return nil, err
	}

	tr.Finalize(string(b.OverallDecision))
	export := tr.ExportStandardFormat()

	if o.cfg.Sink != nil {
		o.cfg.Sink.Decision(ctx, a.SessionID, tr.TraceID(), b)
	}
	log.Info("assessment session complete",
		"decision", b.OverallDecision,
		"confidence", b.OverallConfidence,
		"trace_id", tr.TraceID())

	return &Result{
		SessionID: a.SessionID,
		Brief:     b,
		Trace:     tr,
		Export:    export,
	}, nil
}
