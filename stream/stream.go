// Package stream publishes assessment session events over Redis
// pub/sub: one message per stage transition, terminated by one
// decision message per session. Dashboards and other consumers
// subscribe to a session channel and replay the pipeline live.
package stream

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/urbannexus/core/types"
)

// Kind discriminates the two message shapes on a session channel.
type Kind string

const (
	// KindStage marks a stage-transition message.
	KindStage Kind = "stage"

	// KindDecision marks the terminal decision message. No further
	// messages follow it on the channel.
	KindDecision Kind = "decision"
)

// StageMessage is the per-transition payload.
type StageMessage struct {
	SessionID     string         `json:"session_id"`
	Step          string         `json:"step"`
	Agent         string         `json:"agent"`
	Outputs       map[string]any `json:"outputs"`
	Timestamp     time.Time      `json:"timestamp"`
	DecisionState types.Decision `json:"decision_state,omitempty"`
}

// DecisionMessage is the terminal payload for a session.
type DecisionMessage struct {
	TraceID           string         `json:"trace_id"`
	SessionID         string         `json:"session_id"`
	OverallDecision   types.Decision `json:"overall_decision"`
	OverallConfidence float64        `json:"overall_confidence"`
	NeedsHumanReview  bool           `json:"needs_human_review"`
	HumanReviewNote   string         `json:"human_review_note,omitempty"`
}

// Message is the channel envelope.
type Message struct {
	Kind     Kind             `json:"kind"`
	Stage    *StageMessage    `json:"stage,omitempty"`
	Decision *DecisionMessage `json:"decision,omitempty"`
}

// Publisher sends an encoded message to a named channel. It is the
// seam between the sink and the transport, so tests can capture
// messages without a broker.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Options configures the Redis connection.
type Options struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection
	// establishment.
	ConnectTimeout time.Duration

	// WriteTimeout is the maximum time to wait for publish operations.
	WriteTimeout time.Duration
}

// Client is the Redis-backed transport.
type Client struct {
	client *redis.Client
}

// NewClient connects to Redis and verifies the connection.
func NewClient(opts Options) (*Client, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// Publish implements Publisher.
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := c.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe opens a subscription to a session channel. The returned
// channel receives messages until the context is cancelled; undecodable
// payloads are skipped.
func (c *Client) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var m Message
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					continue
				}
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
