package rule

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Evaluator evaluates rules against state snapshots and routes evaluation
// failures to observability instead of the decision path. A failed
// evaluation (missing key, type mismatch) counts as "not triggered": the
// governance layer fails closed toward "no effect" at runtime, relying on
// RuleSet.Validate to reject malformed definitions at load time.
//
// The zero value is usable: a nil logger falls back to slog.Default and
// missing metric instruments are skipped silently.
type Evaluator struct {
	log *slog.Logger

	// triggeredCounter counts rule firings, labelled by rule ID.
	triggeredCounter metric.Int64Counter

	// failureCounter counts evaluation failures, labelled by rule ID.
	failureCounter metric.Int64Counter
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLogger sets the structured logger used for evaluation warnings.
func WithLogger(log *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.log = log
	}
}

// WithMeter registers metric instruments on the given meter. Instrument
// creation errors are logged and the affected instrument is skipped;
// metrics must never block rule evaluation.
func WithMeter(meter metric.Meter) EvaluatorOption {
	return func(e *Evaluator) {
		if meter == nil {
			return
		}
		var err error
		e.triggeredCounter, err = meter.Int64Counter(
			"governance.rules.triggered",
			metric.WithDescription("Number of governance rule firings"),
			metric.WithUnit("1"),
		)
		if err != nil {
			e.logger().Warn("create triggered counter failed", "error", err)
		}
		e.failureCounter, err = meter.Int64Counter(
			"governance.rules.eval_failures",
			metric.WithDescription("Number of rule evaluation failures treated as not-triggered"),
			metric.WithUnit("1"),
		)
		if err != nil {
			e.logger().Warn("create failure counter failed", "error", err)
		}
	}
}

// NewEvaluator creates an Evaluator with the given options.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) logger() *slog.Logger {
	if e == nil || e.log == nil {
		return slog.Default()
	}
	return e.log
}

// Evaluate reports whether the rule triggers on the given state snapshot.
// It never panics and never returns an error: evaluation failure is
// logged, counted, and treated as not triggered.
func (e *Evaluator) Evaluate(ctx context.Context, r Rule, state map[string]any) bool {
	triggered, err := r.Trigger.Eval(state)
	if err != nil {
		e.logger().Warn("rule evaluation failed, treating as not triggered",
			"rule_id", r.RuleID, "error", err)
		if e != nil && e.failureCounter != nil {
			e.failureCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("rule_id", r.RuleID)))
		}
		return false
	}
	if triggered && e != nil && e.triggeredCounter != nil {
		e.triggeredCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("rule_id", r.RuleID)))
	}
	return triggered
}

// EvaluateAll evaluates every rule in the set and returns the triggered
// rules in resolution order (priority descending, then rule ID).
func (e *Evaluator) EvaluateAll(ctx context.Context, rs *RuleSet, state map[string]any) []Rule {
	var triggered []Rule
	for _, r := range rs.Rules() {
		if e.Evaluate(ctx, r, state) {
			triggered = append(triggered, r)
		}
	}
	sortByResolution(triggered)
	return triggered
}
