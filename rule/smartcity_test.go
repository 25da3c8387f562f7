package rule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbannexus/core/types"
)

func TestSmartCityRules_Valid(t *testing.T) {
	rs := SmartCityRules()
	assert.Equal(t, 5, rs.Len())
	for _, r := range rs.Rules() {
		assert.NoError(t, r.Validate(), r.RuleID)
	}
}

func TestCJISCompliance_TriggersOnALPR(t *testing.T) {
	e := NewEvaluator()
	ctx := context.Background()

	triggered := e.Evaluate(ctx, CJISCompliance, map[string]any{"brief.sensor.alpr": true})
	assert.True(t, triggered)
	assert.False(t, CJISCompliance.OverrideAllowed)
	assert.Equal(t, types.DecisionHold, CJISCompliance.Effect.DecisionFloor())

	assert.False(t, e.Evaluate(ctx, CJISCompliance, map[string]any{"brief.sensor.alpr": false}))
	// Absent sensor key is an evaluation miss, never a trigger.
	assert.False(t, e.Evaluate(ctx, CJISCompliance, map[string]any{}))
}

func TestCommunityNotice_VideoOrAudio(t *testing.T) {
	e := NewEvaluator()
	ctx := context.Background()

	assert.True(t, e.Evaluate(ctx, CommunityNotice, map[string]any{
		"brief.sensor.video": true, "brief.sensor.audio": false,
	}))
	assert.True(t, e.Evaluate(ctx, CommunityNotice, map[string]any{
		"brief.sensor.video": false, "brief.sensor.audio": true,
	}))
	assert.False(t, e.Evaluate(ctx, CommunityNotice, map[string]any{
		"brief.sensor.video": false, "brief.sensor.audio": false,
	}))
}

func TestLowConfidenceEscalates(t *testing.T) {
	e := NewEvaluator()
	ctx := context.Background()

	snap := map[string]any{
		"public_safety.confidence": 0.9,
		"privacy.confidence":       0.35,
		"ot_security.confidence":   0.8,
	}
	assert.True(t, e.Evaluate(ctx, LowConfidenceEscalates, snap))
	assert.True(t, LowConfidenceEscalates.OverrideAllowed)

	snap["privacy.confidence"] = 0.4
	assert.False(t, e.Evaluate(ctx, LowConfidenceEscalates, snap))
}

func TestHighRiskRequiresMitigation_AnyHighRisk(t *testing.T) {
	e := NewEvaluator()
	ctx := context.Background()

	// The trigger counts all High risks, mitigated or not: a deployment
	// carrying a High risk proceeds under its mitigation plan at best.
	assert.True(t, e.Evaluate(ctx, HighRiskRequiresMitigation, map[string]any{"risk.high_count": 1}))
	assert.False(t, e.Evaluate(ctx, HighRiskRequiresMitigation, map[string]any{"risk.high_count": 0}))

	assert.False(t, HighRiskRequiresMitigation.OverrideAllowed)
	assert.Equal(t, types.DecisionMitigate, HighRiskRequiresMitigation.Effect.DecisionFloor())
}

func TestSmartCityResolution_CJISWins(t *testing.T) {
	e := NewEvaluator()
	snap := map[string]any{
		"brief.sensor.alpr":  true,
		"brief.sensor.video": true,
		"brief.sensor.audio": false,
		"risk.high_count":    2,
	}
	triggered := e.EvaluateAll(context.Background(), SmartCityRules(), snap)
	res := Resolve(triggered)

	require.NotNil(t, res.Winner)
	assert.Equal(t, "SC-CJIS-001", res.Winner.RuleID, "highest priority rule wins")
	assert.Equal(t, types.DecisionHold, res.DecisionFloor)
}
