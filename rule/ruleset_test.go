package rule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbannexus/core/types"
)

func testRule(id string, priority int, effect Effect, trigger Predicate) Rule {
	return Rule{
		RuleID:         id,
		Description:    "test rule " + id,
		Trigger:        trigger,
		RequiredAction: "act on " + id,
		Effect:         effect,
		Severity:       SeverityMedium,
		Priority:       priority,
	}
}

func TestNewRuleSet_RejectsDuplicatesAndInvalid(t *testing.T) {
	r1 := testRule("R-001", 10, EffectHold, Exists("a"))
	r2 := testRule("R-001", 20, EffectMitigate, Exists("b"))
	_, err := NewRuleSet([]Rule{r1, r2})
	assert.ErrorContains(t, err, "duplicate rule ID")

	bad := testRule("R-002", 0, EffectHold, Predicate{Kind: "eval", Key: "x"})
	_, err = NewRuleSet([]Rule{bad})
	assert.ErrorContains(t, err, "invalid trigger")

	noAction := testRule("R-003", 0, EffectHold, Exists("a"))
	noAction.RequiredAction = ""
	_, err = NewRuleSet([]Rule{noAction})
	assert.ErrorContains(t, err, "required action")
}

func TestResolve_PriorityThenRuleID(t *testing.T) {
	low := testRule("A-LOW", 10, EffectMitigate, Exists("a"))
	highB := testRule("B-HIGH", 50, EffectHold, Exists("a"))
	highA := testRule("A-HIGH", 50, EffectMitigate, Exists("a"))

	res := Resolve([]Rule{low, highB, highA})
	require.NotNil(t, res.Winner)
	// Same priority: lexical rule ID breaks the tie deterministically.
	assert.Equal(t, "A-HIGH", res.Winner.RuleID)
	assert.Equal(t, []string{"A-HIGH", "B-HIGH", "A-LOW"}, res.RuleIDs)
	// Floors compose monotonically: HOLD from B-HIGH still applies.
	assert.Equal(t, types.DecisionHold, res.DecisionFloor)
}

func TestResolve_EscalateAndEmpty(t *testing.T) {
	esc := testRule("E-001", 5, EffectEscalate, Exists("a"))
	res := Resolve([]Rule{esc})
	assert.True(t, res.Escalate)
	assert.Equal(t, types.DecisionGo, res.DecisionFloor)

	empty := Resolve(nil)
	assert.Nil(t, empty.Winner)
	assert.Equal(t, types.DecisionGo, empty.DecisionFloor)
	assert.False(t, empty.Escalate)
}

func TestEvaluator_FailureIsNotTriggered(t *testing.T) {
	e := NewEvaluator()
	r := testRule("R-404", 0, EffectHold, Equals("missing.key", "x"))
	// Missing key is an evaluation failure: fail closed to not-triggered.
	assert.False(t, e.Evaluate(context.Background(), r, map[string]any{}))
}

func TestEvaluator_EvaluateAllOrdered(t *testing.T) {
	rs, err := NewRuleSet([]Rule{
		testRule("R-B", 10, EffectMitigate, Exists("present")),
		testRule("R-A", 90, EffectHold, Exists("present")),
		testRule("R-C", 50, EffectNone, Exists("absent")),
	})
	require.NoError(t, err)

	e := NewEvaluator()
	triggered := e.EvaluateAll(context.Background(), rs, map[string]any{"present": 1})
	require.Len(t, triggered, 2)
	assert.Equal(t, "R-A", triggered[0].RuleID)
	assert.Equal(t, "R-B", triggered[1].RuleID)
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
rules:
  - rule_id: SC-TEST-001
    description: Edge storage requires encryption review.
    required_action: Review encryption configuration.
    effect: mitigate
    severity: HIGH
    priority: 70
    override_allowed: false
    trigger:
      kind: key_in_set
      key: brief.storage
      values: [edge, hybrid]
  - rule_id: SC-TEST-002
    description: Video plus missing notice escalates.
    required_action: Escalate to the privacy office.
    effect: escalate
    severity: MEDIUM
    priority: 10
    override_allowed: true
    trigger:
      kind: all
      preds:
        - kind: key_equals
          key: brief.sensor.video
          value: true
        - kind: threshold
          key: privacy.confidence
          op: lt
          threshold: 0.4
`)
	rs, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())

	r, ok := rs.ByID("SC-TEST-001")
	require.True(t, ok)
	assert.Equal(t, EffectMitigate, r.Effect)
	assert.Equal(t, SeverityHigh, r.Severity)

	e := NewEvaluator()
	snap := map[string]any{
		"brief.storage":      "edge",
		"brief.sensor.video": true,
		"privacy.confidence": 0.3,
	}
	triggered := e.EvaluateAll(context.Background(), rs, snap)
	assert.Len(t, triggered, 2)
}

func TestParse_RejectsMalformed(t *testing.T) {
	_, err := Parse([]byte("rules: []"))
	assert.Error(t, err)

	_, err = Parse([]byte(`
rules:
  - rule_id: BAD-001
    description: malformed trigger
    required_action: none
    effect: hold
    severity: HIGH
    trigger:
      kind: regex
      key: x
`))
	assert.ErrorContains(t, err, "unknown predicate kind")
}

func TestRuleSet_NonOverridable(t *testing.T) {
	override := testRule("R-OVR", 99, EffectEscalate, Exists("a"))
	override.OverrideAllowed = true
	hard := testRule("R-HARD", 1, EffectHold, Exists("a"))

	rs, err := NewRuleSet([]Rule{override, hard})
	require.NoError(t, err)

	non := rs.NonOverridable()
	require.Len(t, non, 1)
	assert.Equal(t, "R-HARD", non[0].RuleID)
}
