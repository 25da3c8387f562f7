package trace

import (
	"fmt"
	"time"

	"github.com/urbannexus/core/types"
)

// Event is an immutable record of one stage transition. Every agent
// action in a session creates exactly one Event; once appended to a
// Trace it cannot be altered.
//
// Field order matters: the canonical serialization hashed by the trace
// follows the declaration order below, and json.Marshal emits map keys
// in sorted order, so an identical event always serializes identically.
type Event struct {
	// Timestamp is when the transition occurred, in UTC.
	Timestamp time.Time `json:"timestamp"`

	// SessionID identifies the assessment session.
	SessionID string `json:"session_id"`

	// Step is the workflow stage (e.g., "risk_analysis", "critic").
	Step string `json:"step"`

	// Agent is the component that performed the action
	// (e.g., "PrivacyCounsel", "Validator").
	Agent string `json:"agent"`

	// Action describes what the agent did.
	Action string `json:"action"`

	// InputSnapshot is the relevant state before the action.
	InputSnapshot map[string]any `json:"input_snapshot"`

	// OutputSnapshot is the relevant state after the action.
	OutputSnapshot map[string]any `json:"output_snapshot"`

	// RulesApplied lists the governance rule IDs that fired during this
	// transition.
	RulesApplied []string `json:"rules_applied"`

	// CheckpointPassed names the checkpoint cleared by this transition,
	// if any.
	CheckpointPassed string `json:"checkpoint_passed,omitempty"`

	// DecisionState is the decision standing after this transition,
	// if one exists yet.
	DecisionState types.Decision `json:"decision_state,omitempty"`
}

// NewEvent creates a validated Event. This is the construction-time
// gate: an event missing a required field is rejected here and never
// enters the append-only log. Snapshots are copied so later mutation of
// the caller's maps cannot reach into the recorded event.
func NewEvent(sessionID, step, agent, action string, input, output map[string]any) (Event, error) {
	e := Event{
		Timestamp:      time.Now().UTC(),
		SessionID:      sessionID,
		Step:           step,
		Agent:          agent,
		Action:         action,
		InputSnapshot:  copySnapshot(input),
		OutputSnapshot: copySnapshot(output),
		RulesApplied:   []string{},
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// WithRules returns a copy of the event with the applied rule IDs set.
func (e Event) WithRules(ruleIDs []string) Event {
	e.RulesApplied = append([]string{}, ruleIDs...)
	return e
}

// WithCheckpoint returns a copy of the event marked as having cleared
// the named checkpoint.
func (e Event) WithCheckpoint(checkpointID string) Event {
	e.CheckpointPassed = checkpointID
	return e
}

// WithDecision returns a copy of the event carrying a decision state.
func (e Event) WithDecision(d types.Decision) Event {
	e.DecisionState = d
	return e
}

// Validate checks the event's required fields.
func (e Event) Validate() error {
	if e.SessionID == "" {
		return fmt.Errorf("event session ID is required")
	}
	if e.Step == "" {
		return fmt.Errorf("event step is required")
	}
	if e.Agent == "" {
		return fmt.Errorf("event agent is required")
	}
	if e.Action == "" {
		return fmt.Errorf("event action is required")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("event timestamp is required")
	}
	if e.DecisionState != "" && !e.DecisionState.IsValid() {
		return fmt.Errorf("invalid event decision state: %s", e.DecisionState)
	}
	return nil
}

func copySnapshot(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
