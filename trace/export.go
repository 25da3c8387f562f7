package trace

import (
	"encoding/json"
	"fmt"
	"time"
)

// Export is the standard self-contained audit format handed to external
// audit and compliance tooling. The shape is stable and versioned;
// consumers key on Protocol and Version.
type Export struct {
	Protocol            string         `json:"protocol"`
	Version             string         `json:"version"`
	TraceID             string         `json:"trace_id"`
	CreatedAt           time.Time      `json:"created_at"`
	Context             map[string]any `json:"context"`
	Events              []Event        `json:"events"`
	FinalRecommendation string         `json:"final_recommendation"`
	VerificationHash    string         `json:"verification_hash"`
}

// ExportStandardFormat produces the standard export snapshot: protocol
// identifier, version, trace metadata, the full ordered event list, the
// final recommendation, and the verification hash.
func (t *Trace) ExportStandardFormat() Export {
	t.mu.Lock()
	defer t.mu.Unlock()

	events := make([]Event, len(t.events))
	copy(events, t.events)

	return Export{
		Protocol:            Protocol,
		Version:             Version,
		TraceID:             t.traceID,
		CreatedAt:           t.createdAt,
		Context:             copySnapshot(t.context),
		Events:              events,
		FinalRecommendation: t.finalRecommendation,
		VerificationHash:    hashEvents(t.events),
	}
}

// ToJSON serializes the standard export format with indentation.
func (t *Trace) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(t.ExportStandardFormat(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize trace export: %w", err)
	}
	return data, nil
}

// Verify recomputes the verification hash over an export's event
// sequence and compares it to the recorded hash. It returns an error
// when the events have been tampered with, reordered, truncated, or
// extended since export.
func Verify(export Export) error {
	if export.Protocol != Protocol {
		return fmt.Errorf("unknown protocol: %q", export.Protocol)
	}
	recomputed := hashEvents(export.Events)
	if recomputed != export.VerificationHash {
		return fmt.Errorf("verification hash mismatch: recorded %s, recomputed %s",
			export.VerificationHash, recomputed)
	}
	return nil
}

// ParseExport decodes a JSON export payload.
func ParseExport(data []byte) (Export, error) {
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return Export{}, fmt.Errorf("parse trace export: %w", err)
	}
	return export, nil
}
