package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Protocol identifies the audit trail format for external consumers.
const Protocol = "UrbanNexus-PS"

// Version is the semantic version of the export format. It is a contract
// with external audit and compliance tooling; bump it when the exported
// shape changes.
const Version = "1.0"

// ErrTraceFinalized is returned by Append after the final decision event
// has been recorded.
var ErrTraceFinalized = errors.New("trace is finalized; no further events may be appended")

// Trace is the complete audit trail for one assessment session: an
// ordered, append-only sequence of events with a verification hash over
// the full sequence.
//
// The orchestrator appends from a single coordinating goroutine; the
// internal mutex exists so that a misuse under concurrency serializes
// appends instead of corrupting order.
type Trace struct {
	mu sync.Mutex

	traceID   string
	createdAt time.Time

	// context is the original proposal or input context analyzed.
	context map[string]any

	events []Event

	finalRecommendation string
	finalized           bool
}

// New creates a trace for one session with a generated trace ID.
func New(context map[string]any) *Trace {
	return NewWithID(uuid.New().String(), context)
}

// NewWithID creates a trace with a caller-supplied trace ID.
func NewWithID(traceID string, context map[string]any) *Trace {
	return &Trace{
		traceID:   traceID,
		createdAt: time.Now().UTC(),
		context:   copySnapshot(context),
	}
}

// TraceID returns the trace identifier.
func (t *Trace) TraceID() string {
	return t.traceID
}

// CreatedAt returns the trace creation time.
func (t *Trace) CreatedAt() time.Time {
	return t.createdAt
}

// Len returns the number of recorded events.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

// Append adds an event to the log. The event is validated again at the
// boundary: a partial or malformed event never enters the trace. Once
// the trace is finalized, Append fails.
func (t *Trace) Append(e Event) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finalized {
		return ErrTraceFinalized
	}
	t.events = append(t.events, e)
	return nil
}

// Events returns a copy of the recorded events in append order.
func (t *Trace) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Finalize records the session's final recommendation and closes the
// log. Further appends fail with ErrTraceFinalized.
func (t *Trace) Finalize(recommendation string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finalRecommendation = recommendation
	t.finalized = true
}

// FinalRecommendation returns the recorded final recommendation, empty
// until Finalize is called.
func (t *Trace) FinalRecommendation() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finalRecommendation
}

// ComputeVerificationHash returns the hex-encoded SHA-256 of the
// canonical serialization of the full ordered event sequence.
//
// Canonicalization: events serialize with fixed struct field order and
// sorted map keys (encoding/json sorts map keys), so identical sequences
// always hash identically, any field change to any past event changes
// the hash, and event order is part of the hashed content.
func (t *Trace) ComputeVerificationHash() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return hashEvents(t.events)
}

func hashEvents(events []Event) string {
	// Hash the empty sequence as an empty JSON array, not Go's nil.
	if events == nil {
		events = []Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		// Events hold only JSON-encodable values by construction.
		panic(fmt.Sprintf("trace: canonical serialization failed: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
