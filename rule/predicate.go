package rule

import (
	"fmt"
	"strings"
)

// PredicateKind identifies the variant of a Predicate.
type PredicateKind string

// The closed set of predicate variants.
const (
	// KindKeyExists is true when the key is present and non-nil.
	KindKeyExists PredicateKind = "key_exists"

	// KindKeyEquals is true when the key's value equals Value.
	KindKeyEquals PredicateKind = "key_equals"

	// KindKeyInSet is true when the key's value is one of Values.
	KindKeyInSet PredicateKind = "key_in_set"

	// KindThreshold compares the key's numeric value against Threshold
	// using Op.
	KindThreshold PredicateKind = "threshold"

	// KindContains is true when the key's string value contains
	// Substring, case-insensitively.
	KindContains PredicateKind = "contains"

	// KindAll is true when every sub-predicate is true.
	KindAll PredicateKind = "all"

	// KindAny is true when at least one sub-predicate is true.
	KindAny PredicateKind = "any"

	// KindNot negates its single sub-predicate.
	KindNot PredicateKind = "not"
)

// CompareOp is the comparison operator for threshold predicates.
type CompareOp string

// Valid comparison operators.
const (
	OpLT CompareOp = "lt"
	OpLE CompareOp = "le"
	OpGT CompareOp = "gt"
	OpGE CompareOp = "ge"
	OpEQ CompareOp = "eq"
)

// IsValid returns true if the operator is valid.
func (o CompareOp) IsValid() bool {
	switch o {
	case OpLT, OpLE, OpGT, OpGE, OpEQ:
		return true
	default:
		return false
	}
}

// Predicate is a single node of the trigger-condition algebra. The Kind
// tag selects the variant; only the fields relevant to that variant are
// set. Predicates are plain data: they serialize to YAML/JSON for rule
// configuration files and are validated statically at load time.
type Predicate struct {
	Kind PredicateKind `yaml:"kind" json:"kind"`

	// Key is the flattened state key this predicate reads
	// (leaf variants only).
	Key string `yaml:"key,omitempty" json:"key,omitempty"`

	// Value is the expected value for key_equals.
	Value any `yaml:"value,omitempty" json:"value,omitempty"`

	// Values is the allowed set for key_in_set.
	Values []any `yaml:"values,omitempty" json:"values,omitempty"`

	// Op and Threshold configure the threshold variant.
	Op        CompareOp `yaml:"op,omitempty" json:"op,omitempty"`
	Threshold float64   `yaml:"threshold,omitempty" json:"threshold,omitempty"`

	// Substring configures the contains variant.
	Substring string `yaml:"substring,omitempty" json:"substring,omitempty"`

	// Preds holds the sub-predicates for all/any/not.
	Preds []Predicate `yaml:"preds,omitempty" json:"preds,omitempty"`
}

// Constructor helpers for building predicates in code.

// Exists returns a predicate that is true when key is present and non-nil.
func Exists(key string) Predicate {
	return Predicate{Kind: KindKeyExists, Key: key}
}

// Equals returns a predicate that is true when key's value equals value.
func Equals(key string, value any) Predicate {
	return Predicate{Kind: KindKeyEquals, Key: key, Value: value}
}

// InSet returns a predicate that is true when key's value is one of values.
func InSet(key string, values ...any) Predicate {
	return Predicate{Kind: KindKeyInSet, Key: key, Values: values}
}

// AtLeast returns a predicate that is true when key's numeric value is
// greater than or equal to threshold.
func AtLeast(key string, threshold float64) Predicate {
	return Predicate{Kind: KindThreshold, Key: key, Op: OpGE, Threshold: threshold}
}

// Below returns a predicate that is true when key's numeric value is
// strictly less than threshold.
func Below(key string, threshold float64) Predicate {
	return Predicate{Kind: KindThreshold, Key: key, Op: OpLT, Threshold: threshold}
}

// Contains returns a predicate that is true when key's string value
// contains substring, ignoring case.
func Contains(key, substring string) Predicate {
	return Predicate{Kind: KindContains, Key: key, Substring: substring}
}

// All returns a predicate that is true when every sub-predicate is true.
func All(preds ...Predicate) Predicate {
	return Predicate{Kind: KindAll, Preds: preds}
}

// Any returns a predicate that is true when at least one sub-predicate
// is true.
func Any(preds ...Predicate) Predicate {
	return Predicate{Kind: KindAny, Preds: preds}
}

// Not returns a predicate that negates pred.
func Not(pred Predicate) Predicate {
	return Predicate{Kind: KindNot, Preds: []Predicate{pred}}
}

// Validate performs the static checks applied at configuration load time:
// every node must be a known variant with the fields that variant needs.
// Malformed predicates are rejected here, loudly, instead of being
// silently treated as "not triggered" per request.
func (p Predicate) Validate() error {
	switch p.Kind {
	case KindKeyExists:
		if p.Key == "" {
			return fmt.Errorf("key_exists requires a key")
		}
	case KindKeyEquals:
		if p.Key == "" {
			return fmt.Errorf("key_equals requires a key")
		}
		if p.Value == nil {
			return fmt.Errorf("key_equals %q requires a value", p.Key)
		}
	case KindKeyInSet:
		if p.Key == "" {
			return fmt.Errorf("key_in_set requires a key")
		}
		if len(p.Values) == 0 {
			return fmt.Errorf("key_in_set %q requires at least one value", p.Key)
		}
	case KindThreshold:
		if p.Key == "" {
			return fmt.Errorf("threshold requires a key")
		}
		if !p.Op.IsValid() {
			return fmt.Errorf("threshold %q has invalid op: %s", p.Key, p.Op)
		}
	case KindContains:
		if p.Key == "" {
			return fmt.Errorf("contains requires a key")
		}
		if p.Substring == "" {
			return fmt.Errorf("contains %q requires a substring", p.Key)
		}
	case KindAll, KindAny:
		if len(p.Preds) == 0 {
			return fmt.Errorf("%s requires at least one sub-predicate", p.Kind)
		}
		for i, sub := range p.Preds {
			if err := sub.Validate(); err != nil {
				return fmt.Errorf("%s sub-predicate %d: %w", p.Kind, i, err)
			}
		}
	case KindNot:
		if len(p.Preds) != 1 {
			return fmt.Errorf("not requires exactly one sub-predicate, got %d", len(p.Preds))
		}
		if err := p.Preds[0].Validate(); err != nil {
			return fmt.Errorf("not sub-predicate: %w", err)
		}
	default:
		return fmt.Errorf("unknown predicate kind: %q", p.Kind)
	}
	return nil
}

// Eval evaluates the predicate against a flattened state snapshot.
// The snapshot is read-only; evaluation has no side effects. Errors
// (missing key, type mismatch) are returned to the caller; the Evaluator
// converts them into "not triggered" plus an observability report, so
// they never escape to the decision path.
func (p Predicate) Eval(state map[string]any) (bool, error) {
	switch p.Kind {
	case KindKeyExists:
		v, ok := state[p.Key]
		return ok && v != nil, nil

	case KindKeyEquals:
		v, ok := state[p.Key]
		if !ok {
			return false, fmt.Errorf("key %q not present", p.Key)
		}
		return looseEqual(v, p.Value), nil

	case KindKeyInSet:
		v, ok := state[p.Key]
		if !ok {
			return false, fmt.Errorf("key %q not present", p.Key)
		}
		for _, candidate := range p.Values {
			if looseEqual(v, candidate) {
				return true, nil
			}
		}
		return false, nil

	case KindThreshold:
		v, ok := state[p.Key]
		if !ok {
			return false, fmt.Errorf("key %q not present", p.Key)
		}
		n, err := toFloat(v)
		if err != nil {
			return false, fmt.Errorf("key %q: %w", p.Key, err)
		}
		switch p.Op {
		case OpLT:
			return n < p.Threshold, nil
		case OpLE:
			return n <= p.Threshold, nil
		case OpGT:
			return n > p.Threshold, nil
		case OpGE:
			return n >= p.Threshold, nil
		case OpEQ:
			return n == p.Threshold, nil
		default:
			return false, fmt.Errorf("invalid threshold op: %s", p.Op)
		}

	case KindContains:
		v, ok := state[p.Key]
		if !ok {
			return false, fmt.Errorf("key %q not present", p.Key)
		}
		s, ok := v.(string)
		if !ok {
			return false, fmt.Errorf("key %q is %T, want string", p.Key, v)
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(p.Substring)), nil

	case KindAll:
		for _, sub := range p.Preds {
			ok, err := sub.Eval(state)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case KindAny:
		for _, sub := range p.Preds {
			ok, err := sub.Eval(state)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case KindNot:
		if len(p.Preds) != 1 {
			return false, fmt.Errorf("not requires exactly one sub-predicate")
		}
		ok, err := p.Preds[0].Eval(state)
		if err != nil {
			return false, err
		}
		return !ok, nil

	default:
		return false, fmt.Errorf("unknown predicate kind: %q", p.Kind)
	}
}

// looseEqual compares a state value against a configured expectation.
// Numeric values compare by magnitude regardless of concrete type, since
// YAML and JSON decoding produce different Go numeric types for the same
// literal.
func looseEqual(a, b any) bool {
	if af, err := toFloat(a); err == nil {
		if bf, err := toFloat(b); err == nil {
			return af == bf
		}
		return false
	}
	return a == b
}

// toFloat coerces the numeric types produced by JSON and YAML decoding.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("value is %T, want a number", v)
	}
}
