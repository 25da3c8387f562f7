package stream

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/urbannexus/core/brief"
	"github.com/urbannexus/core/trace"
)

// DefaultChannelPrefix namespaces session channels.
const DefaultChannelPrefix = "assessments:"

// Sink adapts a Publisher to the orchestrator's event sink. Delivery is
// best effort: publish failures are logged and dropped, never surfaced
// into the pipeline.
type Sink struct {
	pub    Publisher
	prefix string
	log    *slog.Logger
}

// NewSink builds a sink over a publisher. An empty prefix uses
// DefaultChannelPrefix.
func NewSink(pub Publisher, prefix string, log *slog.Logger) *Sink {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sink{pub: pub, prefix: prefix, log: log}
}

// Channel returns the pub/sub channel for a session.
func (s *Sink) Channel(sessionID string) string {
	return s.prefix + sessionID
}

// StageEvent publishes one stage-transition message.
func (s *Sink) StageEvent(ctx context.Context, e trace.Event) {
	s.send(ctx, e.SessionID, Message{
		Kind: KindStage,
		Stage: &StageMessage{
			SessionID:     e.SessionID,
			Step:          e.Step,
			Agent:         e.Agent,
			Outputs:       e.OutputSnapshot,
			Timestamp:     e.Timestamp,
			DecisionState: e.DecisionState,
		},
	})
}

// Decision publishes the terminal decision message for a session.
func (s *Sink) Decision(ctx context.Context, sessionID, traceID string, b *brief.DecisionBrief) {
	s.send(ctx, sessionID, Message{
		Kind: KindDecision,
		Decision: &DecisionMessage{
			TraceID:           traceID,
			SessionID:         sessionID,
			OverallDecision:   b.OverallDecision,
			OverallConfidence: b.OverallConfidence,
			NeedsHumanReview:  b.NeedsHumanReview,
			HumanReviewNote:   b.HumanReviewNote,
		},
	})
}

func (s *Sink) send(ctx context.Context, sessionID string, m Message) {
	payload, err := json.Marshal(m)
	if err != nil {
		s.log.Warn("dropping undeliverable stream message", "error", err)
		return
	}
	if err := s.pub.Publish(ctx, s.Channel(sessionID), payload); err != nil {
		s.log.Warn("stream publish failed", "channel", s.Channel(sessionID), "error", err)
	}
}
