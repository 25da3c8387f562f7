package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbannexus/core/types"
)

func mustEvent(t *testing.T, step, agent string, output map[string]any) Event {
	t.Helper()
	e, err := NewEvent("sess-1", step, agent, "analyze", map[string]any{"zone_id": "z1"}, output)
	require.NoError(t, err)
	return e
}

func TestNewEvent_Validation(t *testing.T) {
	tests := []struct {
		name                           string
		sessionID, step, agent, action string
	}{
		{"missing session", "", "critic", "Critic", "review"},
		{"missing step", "sess-1", "", "Critic", "review"},
		{"missing agent", "sess-1", "critic", "", "review"},
		{"missing action", "sess-1", "critic", "Critic", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEvent(tt.sessionID, tt.step, tt.agent, tt.action, nil, nil)
			assert.Error(t, err)
		})
	}
}

func TestAppend_RejectsMalformedEvent(t *testing.T) {
	tr := New(nil)
	err := tr.Append(Event{Step: "critic"})
	assert.Error(t, err)
	assert.Equal(t, 0, tr.Len(), "partial events must never enter the log")
}

func TestEvent_SnapshotsAreCopied(t *testing.T) {
	input := map[string]any{"zone_id": "z1"}
	e, err := NewEvent("sess-1", "assessment", "SiteViability", "lookup", input, nil)
	require.NoError(t, err)

	input["zone_id"] = "tampered"
	assert.Equal(t, "z1", e.InputSnapshot["zone_id"])
}

func TestVerificationHash_Determinism(t *testing.T) {
	tr := New(nil)
	require.NoError(t, tr.Append(mustEvent(t, "assessment", "SiteViability", map[string]any{"zone": "z1"})))
	require.NoError(t, tr.Append(mustEvent(t, "risk_analysis", "PrivacyCounsel", map[string]any{"risks": 2})))

	assert.Equal(t, tr.ComputeVerificationHash(), tr.ComputeVerificationHash())
}

func TestVerificationHash_TamperSensitivity(t *testing.T) {
	e1 := mustEvent(t, "assessment", "SiteViability", map[string]any{"zone": "z1"})
	e2 := mustEvent(t, "risk_analysis", "PrivacyCounsel", map[string]any{"risks": 2})

	full := New(nil)
	require.NoError(t, full.Append(e1))
	require.NoError(t, full.Append(e2))

	truncated := New(nil)
	require.NoError(t, truncated.Append(e1))

	assert.NotEqual(t, full.ComputeVerificationHash(), truncated.ComputeVerificationHash(),
		"removing the last event must change the hash")

	mutated := New(nil)
	e1Mutated := e1
	e1Mutated.Agent = "SomeoneElse"
	require.NoError(t, mutated.Append(e1Mutated))
	require.NoError(t, mutated.Append(e2))
	assert.NotEqual(t, full.ComputeVerificationHash(), mutated.ComputeVerificationHash(),
		"changing any field of any past event must change the hash")
}

func TestVerificationHash_OrderSensitivity(t *testing.T) {
	e1 := mustEvent(t, "assessment", "SiteViability", map[string]any{"zone": "z1"})
	e2 := mustEvent(t, "risk_analysis", "PrivacyCounsel", map[string]any{"risks": 2})

	forward := New(nil)
	require.NoError(t, forward.Append(e1))
	require.NoError(t, forward.Append(e2))

	reversed := New(nil)
	require.NoError(t, reversed.Append(e2))
	require.NoError(t, reversed.Append(e1))

	assert.NotEqual(t, forward.ComputeVerificationHash(), reversed.ComputeVerificationHash(),
		"event order is part of the hashed content")
}

func TestFinalize_ClosesLog(t *testing.T) {
	tr := New(nil)
	require.NoError(t, tr.Append(mustEvent(t, "synthesis", "Synthesizer", nil)))
	tr.Finalize("HOLD: unmitigated high-severity risks")

	err := tr.Append(mustEvent(t, "extra", "Nobody", nil))
	assert.ErrorIs(t, err, ErrTraceFinalized)
	assert.Equal(t, "HOLD: unmitigated high-severity risks", tr.FinalRecommendation())
}

func TestExportStandardFormat(t *testing.T) {
	tr := NewWithID("trace-42", map[string]any{"zone_id": "eng_lab_parking"})
	e := mustEvent(t, "synthesis", "Synthesizer", map[string]any{"decision": "GO"}).
		WithRules([]string{"SC-CJIS-001"}).
		WithDecision(types.DecisionGo)
	require.NoError(t, tr.Append(e))
	tr.Finalize("GO")

	export := tr.ExportStandardFormat()
	assert.Equal(t, Protocol, export.Protocol)
	assert.Equal(t, Version, export.Version)
	assert.Equal(t, "trace-42", export.TraceID)
	assert.Equal(t, "eng_lab_parking", export.Context["zone_id"])
	require.Len(t, export.Events, 1)
	assert.Equal(t, []string{"SC-CJIS-001"}, export.Events[0].RulesApplied)
	assert.Equal(t, "GO", export.FinalRecommendation)
	assert.Equal(t, tr.ComputeVerificationHash(), export.VerificationHash)
}

func TestExport_RoundTripRehash(t *testing.T) {
	tr := New(map[string]any{"zone_id": "z1"})
	require.NoError(t, tr.Append(mustEvent(t, "assessment", "SiteViability", map[string]any{"ok": true})))
	require.NoError(t, tr.Append(mustEvent(t, "risk_analysis", "OTSecurityEngineer", map[string]any{"risks": 2}).WithDecision(types.DecisionMitigate)))
	tr.Finalize("MITIGATE")

	data, err := tr.ToJSON()
	require.NoError(t, err)

	export, err := ParseExport(data)
	require.NoError(t, err)
	require.NoError(t, Verify(export))

	// Feed the exported events into a fresh trace and rehash.
	fresh := NewWithID(export.TraceID, export.Context)
	for _, e := range export.Events {
		require.NoError(t, fresh.Append(e))
	}
	assert.Equal(t, export.VerificationHash, fresh.ComputeVerificationHash())
}

func TestVerify_DetectsTampering(t *testing.T) {
	tr := New(nil)
	require.NoError(t, tr.Append(mustEvent(t, "assessment", "SiteViability", nil)))
	export := tr.ExportStandardFormat()

	export.Events[0].Action = "tampered"
	err := Verify(export)
	assert.ErrorContains(t, err, "verification hash mismatch")
}

func TestVerify_RejectsUnknownProtocol(t *testing.T) {
	export := New(nil).ExportStandardFormat()
	export.Protocol = "SomethingElse"
	assert.ErrorContains(t, Verify(export), "unknown protocol")
}
