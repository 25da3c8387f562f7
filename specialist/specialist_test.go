package specialist

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/llm"
	"github.com/urbannexus/core/retrieval"
	"github.com/urbannexus/core/types"
	"github.com/urbannexus/core/zones"
)

func videoBrief() types.ProjectBrief {
	return types.ProjectBrief{
		Corridors: []string{"Main St"},
		Sensors:   map[string]bool{"video": true, "audio": false},
		Storage:   "cloud",
	}
}

func ksDocs() []retrieval.Doc {
	return []retrieval.Doc{
		{Title: "OT Security Guide", URI: "kb://ot-1", Snippet: "network segmentation security best practices", Source: "kb"},
		{Title: "Privacy Handbook", URI: "kb://priv-1", Snippet: "privacy implications of video storage", Source: "kb"},
	}
}

func TestOTSecurityEdgeStorageRisk(t *testing.T) {
	s := NewOTSecurity(Deps{})

	f, err := s.Analyze(context.Background(), types.ProjectBrief{Storage: "edge"})
	require.NoError(t, err)
	require.NotNil(t, f)

	var enc *finding.Risk
	for i := range f.Risks {
		if f.Risks[i].RiskID == "RISK-OT-001" {
			enc = &f.Risks[i]
		}
	}
	require.NotNil(t, enc, "edge storage must surface the encryption-at-rest risk")
	assert.Equal(t, finding.SeverityHigh, enc.Severity)
	assert.NotEmpty(t, enc.Mitigation)
}

func TestOTSecurityCloudStorageSkipsEncryptionRisk(t *testing.T) {
	s := NewOTSecurity(Deps{})

	f, err := s.Analyze(context.Background(), types.ProjectBrief{Storage: "cloud"})
	require.NoError(t, err)

	ids := make([]string, 0, len(f.Risks))
	for _, r := range f.Risks {
		ids = append(ids, r.RiskID)
	}
	assert.NotContains(t, ids, "RISK-OT-001")
	assert.Contains(t, ids, "RISK-OT-002", "segmentation risk applies regardless of storage")
}

func TestOTSecurityConfidenceTracksEvidence(t *testing.T) {
	noKB := NewOTSecurity(Deps{})
	f, err := noKB.Analyze(context.Background(), types.ProjectBrief{Storage: "edge"})
	require.NoError(t, err)
	assert.InDelta(t, finding.DegradedConfidence, f.Confidence, 1e-9)

	withKB := NewOTSecurity(Deps{Searcher: retrieval.Static{Docs: ksDocs()}})
	f, err = withKB.Analyze(context.Background(), types.ProjectBrief{Storage: "edge"})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, f.Confidence, 1e-9)
	assert.NotEmpty(t, f.Evidence)
}

func TestPrivacyVideoWithoutEvidence(t *testing.T) {
	s := NewPrivacy(Deps{})

	f, err := s.Analyze(context.Background(), videoBrief())
	require.NoError(t, err)

	assert.NotEmpty(t, f.Risks, "video capture must surface privacy risks even offline")
	assert.NotEmpty(t, f.Requirements)
	assert.LessOrEqual(t, f.Confidence, 0.4)
}

func TestPrivacySensorRiskSelection(t *testing.T) {
	s := NewPrivacy(Deps{})

	f, err := s.Analyze(context.Background(), types.ProjectBrief{
		Sensors: map[string]bool{"alpr": true},
		Storage: "cloud",
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(f.Risks))
	for _, r := range f.Risks {
		ids = append(ids, r.RiskID)
	}
	assert.Contains(t, ids, "RISK-PRIV-004")
	assert.NotContains(t, ids, "RISK-PRIV-001", "no video sensor, no video risk")
}

func TestPrivacyMergesGeneratedRisks(t *testing.T) {
	resp, _ := json.Marshal(map[string]any{
		"risks": []map[string]any{
			{
				"risk_id":     "RISK-PRIV-900",
				"description": "Cross-agency data sharing without agreements.",
				"severity":    "Medium",
				"mitigation":  "Execute data sharing agreements before any export.",
			},
			{
				"risk_id":     "RISK-PRIV-901",
				"description": "bad severity",
				"severity":    "Catastrophic",
				"mitigation":  "n/a",
			},
		},
	})
	s := NewPrivacy(Deps{
		LLM:      llm.Static{Responses: map[string]json.RawMessage{"privacy risks": resp}},
		Searcher: retrieval.Static{Docs: ksDocs()},
	})

	f, err := s.Analyze(context.Background(), videoBrief())
	require.NoError(t, err)

	ids := make([]string, 0, len(f.Risks))
	for _, r := range f.Risks {
		ids = append(ids, r.RiskID)
	}
	assert.Contains(t, ids, "RISK-PRIV-001", "baseline survives enrichment")
	assert.Contains(t, ids, "RISK-PRIV-900", "valid generated risk merged")
	assert.NotContains(t, ids, "RISK-PRIV-901", "invalid severity rejected")
}

func TestPublicSafetyALPRBaseline(t *testing.T) {
	s := NewPublicSafety(Deps{})

	f, err := s.Analyze(context.Background(), types.ProjectBrief{
		Sensors: map[string]bool{"alpr": true, "video": true},
		Storage: "cloud",
	})
	require.NoError(t, err)

	var cjis *finding.Risk
	for i := range f.Risks {
		if f.Risks[i].RiskID == "RISK-PS-001" {
			cjis = &f.Risks[i]
		}
	}
	require.NotNil(t, cjis)
	assert.Equal(t, finding.SeverityHigh, cjis.Severity)

	reqIDs := make([]string, 0, len(f.Requirements))
	for _, r := range f.Requirements {
		reqIDs = append(reqIDs, r.ReqID)
	}
	assert.Contains(t, reqIDs, "REQ-PS-001")
	assert.Contains(t, reqIDs, "REQ-PS-002")
}

func TestSiteViabilityUnknownZone(t *testing.T) {
	store := zones.NewStore([]types.Zone{
		{ZoneID: "campus-core", Name: "Campus Core", Description: "Dense mixed use."},
	})
	s := NewSiteViability(store)

	zone := s.Assess(context.Background(), "campus-core")
	assert.Equal(t, "Campus Core", zone.Name)

	zone = s.Assess(context.Background(), "nowhere")
	assert.Equal(t, "nowhere", zone.ZoneID)
	assert.Equal(t, "Unknown Zone", zone.Name)
}

func TestSustainabilityBaseline(t *testing.T) {
	s := NewSustainability(Deps{})
	zone := types.Zone{
		ZoneID:     "riverfront",
		Name:       "Riverfront",
		Attributes: map[string]any{"streetlights": 120},
	}
	goals := []types.Goal{
		{Type: types.GoalEnergy, Description: "Cut streetlight energy use", Priority: types.PriorityHigh},
	}

	proposals, err := s.Propose(context.Background(), zone, goals)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, "UbiCell", proposals[0].Hardware.SKU)
	assert.Equal(t, types.HardwareControl, proposals[0].Hardware.Category)
	assert.NoError(t, proposals[0].Validate())

	// No energy goal, no proposal.
	proposals, err = s.Propose(context.Background(), zone, nil)
	require.NoError(t, err)
	assert.Empty(t, proposals)
}

func TestConnectivityBaseline(t *testing.T) {
	s := NewConnectivity(Deps{})
	goals := []types.Goal{
		{Type: types.GoalConnectivity, Description: "Public WiFi in the plaza", Priority: types.PriorityMedium},
	}

	proposals, err := s.Propose(context.Background(), types.Zone{ZoneID: "plaza"}, goals)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, types.HardwareHub, proposals[0].Hardware.Category)
	assert.Contains(t, proposals[0].Hardware.Features, "Public WiFi")
}

func TestGeneratedProposalsReplaceBaseline(t *testing.T) {
	resp, _ := json.Marshal(map[string]any{
		"proposals": []map[string]any{
			{
				"sku":                  "UbiHub AI+",
				"category":             "Hub",
				"features":             []string{"Public WiFi", "Edge AI"},
				"location_description": "Transit stop poles",
				"value_proposition":    "Coverage plus camera analytics on one pole.",
				"justification":        "Transit corridor needs both connectivity and monitoring.",
			},
		},
	})
	s := NewConnectivity(Deps{LLM: llm.Static{Default: resp}})

	proposals, err := s.Propose(context.Background(), types.Zone{ZoneID: "transit"}, nil)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, "UbiHub AI+", proposals[0].Hardware.SKU)
	assert.NotEmpty(t, proposals[0].ProposalID)
}
