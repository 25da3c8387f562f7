package rule

import (
	"fmt"
	"os"
	"sort"

	"github.com/urbannexus/core/types"
	"gopkg.in/yaml.v3"
)

// RuleSet is an immutable, validated collection of governance rules.
// Build one at process start with NewRuleSet or LoadFile; both reject
// malformed definitions so that runtime evaluation can safely fail
// closed.
type RuleSet struct {
	rules []Rule
	byID  map[string]Rule
}

// NewRuleSet validates the given rules and builds a RuleSet. Rule IDs
// must be globally unique.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	byID := make(map[string]Rule, len(rules))
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule at index %d: %w", i, err)
		}
		if _, dup := byID[r.RuleID]; dup {
			return nil, fmt.Errorf("duplicate rule ID: %s", r.RuleID)
		}
		byID[r.RuleID] = r
	}
	out := make([]Rule, len(rules))
	copy(out, rules)
	return &RuleSet{rules: out, byID: byID}, nil
}

// Rules returns a copy of the rules in declaration order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// ByID returns the rule with the given ID.
func (rs *RuleSet) ByID(id string) (Rule, bool) {
	r, ok := rs.byID[id]
	return r, ok
}

// NonOverridable returns the rules that cannot be overridden by a human,
// in resolution order.
func (rs *RuleSet) NonOverridable() []Rule {
	var out []Rule
	for _, r := range rs.rules {
		if !r.OverrideAllowed {
			out = append(out, r)
		}
	}
	sortByResolution(out)
	return out
}

// sortByResolution orders rules by priority descending, ties broken by
// lexical rule ID ascending. This is the documented conflict-resolution
// order for triggered rules.
func sortByResolution(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].RuleID < rules[j].RuleID
	})
}

// Resolution is the combined outcome of a set of triggered rules.
type Resolution struct {
	// Winner is the highest-precedence triggered rule, if any.
	Winner *Rule

	// DecisionFloor is the most restrictive decision floor imposed by
	// any triggered rule. Floors compose monotonically, so conflicting
	// rules cannot relax each other; the Winner only determines which
	// required action is surfaced first to reviewers.
	DecisionFloor types.Decision

	// Escalate is true when any triggered rule carries EffectEscalate.
	Escalate bool

	// RuleIDs lists the triggered rule IDs in resolution order.
	RuleIDs []string
}

// Resolve combines triggered rules into a single enforcement outcome.
// The input is re-sorted into resolution order, so callers may pass
// rules in any order.
func Resolve(triggered []Rule) Resolution {
	ordered := make([]Rule, len(triggered))
	copy(ordered, triggered)
	sortByResolution(ordered)

	res := Resolution{DecisionFloor: types.DecisionGo}
	for i := range ordered {
		r := ordered[i]
		res.RuleIDs = append(res.RuleIDs, r.RuleID)
		if res.Winner == nil && r.Effect != EffectNone {
			res.Winner = &ordered[i]
		}
		if floor := r.Effect.DecisionFloor(); types.CompareDecisions(floor, res.DecisionFloor) > 0 {
			res.DecisionFloor = floor
		}
		if r.Effect == EffectEscalate {
			res.Escalate = true
		}
	}
	return res
}

// rulesFile is the YAML document shape for rule configuration files.
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadFile reads a YAML rule configuration file and returns a validated
// RuleSet. This is the loud static-validation pass: any malformed rule
// fails the load, before anything reaches runtime evaluation.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML rule configuration data into a validated RuleSet.
func Parse(data []byte) (*RuleSet, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules file defines no rules")
	}
	rs, err := NewRuleSet(file.Rules)
	if err != nil {
		return nil, fmt.Errorf("validate rules file: %w", err)
	}
	return rs, nil
}
