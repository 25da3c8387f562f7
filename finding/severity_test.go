package finding

import "testing"

func TestSeverity_IsValid(t *testing.T) {
	for _, s := range []Severity{SeverityHigh, SeverityMedium, SeverityLow} {
		if !s.IsValid() {
			t.Errorf("IsValid() = false for %v, want true", s)
		}
	}
	for _, s := range []Severity{"", "high", "Critical", "NONE"} {
		if s.IsValid() {
			t.Errorf("IsValid() = true for %q, want false", s)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity("High")
	if err != nil {
		t.Fatalf("ParseSeverity(High) error = %v", err)
	}
	if s != SeverityHigh {
		t.Errorf("ParseSeverity(High) = %v, want %v", s, SeverityHigh)
	}
	if _, err := ParseSeverity("severe"); err == nil {
		t.Error("ParseSeverity(severe) error = nil, want error")
	}
}

func TestCompareSeverity(t *testing.T) {
	tests := []struct {
		s1, s2 Severity
		want   int
	}{
		{SeverityHigh, SeverityMedium, 1},
		{SeverityMedium, SeverityHigh, -1},
		{SeverityLow, SeverityLow, 0},
		{SeverityLow, "", 1},
	}
	for _, tt := range tests {
		if got := CompareSeverity(tt.s1, tt.s2); got != tt.want {
			t.Errorf("CompareSeverity(%v, %v) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}
