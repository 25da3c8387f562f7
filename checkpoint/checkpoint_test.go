package checkpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/rule"
)

func completeRiskState() map[string]any {
	return map[string]any{
		"public_safety.confidence": 0.9,
		"privacy.confidence":       0.5,
		"ot_security.confidence":   0.8,
	}
}

func TestCriticGate_Pass(t *testing.T) {
	eval := rule.NewEvaluator()
	ok, reasons := CriticGate().CanPass(context.Background(), eval, completeRiskState())
	assert.True(t, ok)
	assert.Empty(t, reasons)
}

func TestCriticGate_MissingKey(t *testing.T) {
	eval := rule.NewEvaluator()
	st := completeRiskState()
	delete(st, "privacy.confidence")

	ok, reasons := CriticGate().CanPass(context.Background(), eval, st)
	assert.False(t, ok)
	// Both failure classes surface: the missing key and the failed
	// precondition rule that reads it.
	require.Len(t, reasons, 2)
	assert.Contains(t, reasons[0], "missing required state: privacy.confidence")
	assert.Contains(t, reasons[1], "failed validation")
}

func TestCriticGate_NilValueCountsAsMissing(t *testing.T) {
	eval := rule.NewEvaluator()
	st := completeRiskState()
	st["ot_security.confidence"] = nil

	ok, reasons := CriticGate().CanPass(context.Background(), eval, st)
	assert.False(t, ok)
	assert.Contains(t, reasons[0], "missing required state: ot_security.confidence")
}

func TestCanPass_ReferentialTransparency(t *testing.T) {
	eval := rule.NewEvaluator()
	gate := ValidatorGate(finding.TopicPrivacy)
	st := map[string]any{
		"privacy.confidence":      0.5,
		"critique.privacy.status": "ok",
	}

	for i := 0; i < 3; i++ {
		ok, reasons := gate.CanPass(context.Background(), eval, st)
		assert.True(t, ok, "call %d", i)
		assert.Empty(t, reasons, "call %d", i)
	}
}

func TestValidatorGate_RequiresCritique(t *testing.T) {
	eval := rule.NewEvaluator()
	gate := ValidatorGate(finding.TopicOTSecurity)

	ok, reasons := gate.CanPass(context.Background(), eval, map[string]any{
		"ot_security.confidence": 0.8,
	})
	assert.False(t, ok)
	require.Len(t, reasons, 2)
	assert.Contains(t, reasons[0], "critique.ot_security.status")

	ok, _ = gate.CanPass(context.Background(), eval, map[string]any{
		"ot_security.confidence":      0.8,
		"critique.ot_security.status": "revise",
	})
	assert.True(t, ok, "revise is a valid critique status; gating on it is the validator's job")
}

func TestCanPass_NeverPanicsOnEmptyState(t *testing.T) {
	eval := rule.NewEvaluator()
	ok, reasons := CriticGate().CanPass(context.Background(), eval, map[string]any{})
	assert.False(t, ok)
	assert.NotEmpty(t, reasons)
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
checkpoints:
  - checkpoint_id: SYNTH_GATE
    description: Ensures all validations exist before synthesis
    required_state_keys:
      - validation.public_safety.status
      - validation.privacy.status
      - validation.ot_security.status
    validation_rules:
      - rule_id: SG001
        description: Public safety validation must carry a decision
        required_action: allow_synthesis
        effect: none
        severity: NONE
        trigger:
          kind: key_in_set
          key: validation.public_safety.status
          values: [GO, MITIGATE, HOLD]
`)
	gates, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, gates, 1)
	assert.Equal(t, "SYNTH_GATE", gates[0].CheckpointID)
	assert.Len(t, gates[0].RequiredStateKeys, 3)
}

func TestParse_RejectsMalformedRule(t *testing.T) {
	data := []byte(`
checkpoints:
  - checkpoint_id: BAD_GATE
    description: has a malformed precondition
    validation_rules:
      - rule_id: BG001
        description: bad trigger
        required_action: x
        effect: none
        severity: NONE
        trigger:
          kind: regex
          key: x
`)
	_, err := Parse(data)
	assert.ErrorContains(t, err, "unknown predicate kind")
}
