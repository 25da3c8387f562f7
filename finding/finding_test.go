package finding

import "testing"

func validFinding() *Finding {
	return &Finding{
		Topic: TopicOTSecurity,
		Evidence: []Evidence{
			{Title: "OT hardening guide", URI: "kb://ot/hardening", Snippet: "Segment sensor networks.", Source: "kb"},
		},
		Risks: []Risk{
			{RiskID: "RISK-OT-001", Description: "Weak encryption at rest on edge devices.", Severity: SeverityHigh, Mitigation: "Enable AES-256 on all edge storage."},
			{RiskID: "RISK-OT-002", Description: "Insufficient network segmentation.", Severity: SeverityMedium, Mitigation: "Isolate the sensor VLAN."},
		},
		Requirements: []Requirement{
			{ReqID: "REQ-OT-001", Description: "Encryption at rest and in transit.", IsMet: false},
		},
		Notes:      "baseline OT assessment",
		Confidence: 0.8,
	}
}

func TestFinding_Validate(t *testing.T) {
	if err := validFinding().Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Finding)
	}{
		{"invalid topic", func(f *Finding) { f.Topic = "weather" }},
		{"confidence above range", func(f *Finding) { f.Confidence = 1.5 }},
		{"confidence below range", func(f *Finding) { f.Confidence = -0.1 }},
		{"duplicate risk ID", func(f *Finding) {
			f.Risks = append(f.Risks, Risk{RiskID: "RISK-OT-001", Description: "dup", Severity: SeverityLow, Mitigation: "n/a"})
		}},
		{"duplicate requirement ID", func(f *Finding) {
			f.Requirements = append(f.Requirements, Requirement{ReqID: "REQ-OT-001", Description: "dup"})
		}},
		{"invalid risk severity", func(f *Finding) { f.Risks[0].Severity = "catastrophic" }},
		{"missing risk ID", func(f *Finding) { f.Risks[0].RiskID = "" }},
		{"missing evidence title", func(f *Finding) { f.Evidence[0].Title = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFinding()
			tt.mutate(f)
			if err := f.Validate(); err == nil {
				t.Errorf("Validate() error = nil, want error")
			}
		})
	}
}

func TestNew_RejectsInvalid(t *testing.T) {
	_, err := New("weather", nil, nil, nil, "", 0.5)
	if err == nil {
		t.Fatal("New() with invalid topic returned nil error")
	}
}

func TestDegraded(t *testing.T) {
	f := Degraded(TopicPrivacy, "")
	if err := f.Validate(); err != nil {
		t.Fatalf("Degraded() produced invalid finding: %v", err)
	}
	if f.Confidence != DegradedConfidence {
		t.Errorf("Degraded() Confidence = %v, want %v", f.Confidence, DegradedConfidence)
	}
	if len(f.Risks) != 0 || len(f.Requirements) != 0 {
		t.Error("Degraded() should have empty risk and requirement lists")
	}
	if f.Notes == "" {
		t.Error("Degraded() should carry an explanatory note")
	}
}

func TestFinding_MaxRiskSeverity(t *testing.T) {
	f := validFinding()
	if got := f.MaxRiskSeverity(); got != SeverityHigh {
		t.Errorf("MaxRiskSeverity() = %v, want %v", got, SeverityHigh)
	}
	empty := Degraded(TopicPrivacy, "")
	if got := empty.MaxRiskSeverity(); got != "" {
		t.Errorf("MaxRiskSeverity() on empty risks = %q, want empty", got)
	}
}

func TestFinding_UnmitigatedHighRisks(t *testing.T) {
	f := validFinding()
	if got := f.UnmitigatedHighRisks(); len(got) != 0 {
		t.Errorf("UnmitigatedHighRisks() = %d risks, want 0 (all mitigated)", len(got))
	}
	f.Risks[0].Mitigation = ""
	if got := f.UnmitigatedHighRisks(); len(got) != 1 {
		t.Errorf("UnmitigatedHighRisks() = %d risks, want 1", len(got))
	}
}

func TestFinding_UnmetRequirements(t *testing.T) {
	f := validFinding()
	if got := f.UnmetRequirements(); len(got) != 1 {
		t.Errorf("UnmetRequirements() = %d, want 1", len(got))
	}
}
