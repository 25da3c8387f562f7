// Package rule implements declarative governance rules evaluated against
// flattened workflow state.
//
// A Rule pairs a trigger predicate with a required action, an enforcement
// effect, an override policy, and a severity. Rules are configuration:
// defined at process start, validated statically by RuleSet.Validate, and
// immutable for the process lifetime.
//
// Trigger conditions are a closed algebraic predicate type (key-exists,
// key-equals, key-in-set, numeric threshold, substring, and boolean
// composition) evaluated by a small safe interpreter. There is no
// general-purpose expression language: governance triggers must not be a
// code-execution surface.
//
// Evaluation never panics or returns an error to the decision path. Any
// internal failure (missing key, type mismatch) counts as "not triggered"
// and is reported through the Evaluator's logger and metric counter, so
// rules fail closed toward "no effect" at runtime while malformed
// definitions are caught loudly at configuration load time.
package rule
