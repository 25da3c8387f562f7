// Package llm defines the text-generation collaborator contract consumed
// by the specialists, critic, and validator.
//
// The capability is external to this module: production bindings
// (Vertex, OpenAI-compatible, local) implement StructuredClient at the
// process entry point and are injected into the orchestrator at
// construction. The core never reaches for a process-wide client.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Schema describes the expected JSON shape of a structured response.
// It is a plain JSON-Schema document handed to the provider; the core
// treats it as opaque.
type Schema map[string]any

// StructuredClient generates a JSON object matching a schema.
//
// Contract: implementations return (nil, nil) when no usable response
// could be produced (provider outage, malformed output, timeout). They
// never panic and never surface provider internals as errors the caller
// must interpret; a non-nil error means the request itself was invalid.
// Callers treat a nil response as "no risks/requirements identified, low
// confidence" and degrade deterministically.
type StructuredClient interface {
	GenerateStructured(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error)
}

// Unavailable is a StructuredClient that always reports no usable
// response. It is the default collaborator for offline runs and tests,
// exercising every degradation path.
type Unavailable struct{}

// GenerateStructured implements StructuredClient.
func (Unavailable) GenerateStructured(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	return nil, nil
}

// Static is a StructuredClient for tests: it returns canned responses
// keyed by a substring of the prompt, falling back to a default.
type Static struct {
	// Responses maps a prompt substring to the raw response returned
	// when the prompt contains it.
	Responses map[string]json.RawMessage

	// Default is returned when no substring matches. Nil means
	// "no usable response".
	Default json.RawMessage
}

// GenerateStructured implements StructuredClient.
func (s Static) GenerateStructured(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	for needle, resp := range s.Responses {
		if needle != "" && containsFold(prompt, needle) {
			return resp, nil
		}
	}
	return s.Default, nil
}

// Decode unmarshals a structured response into out. A nil raw response
// is reported as ok=false without touching out.
func Decode(raw json.RawMessage, out any) (bool, error) {
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode structured response: %w", err)
	}
	return true, nil
}
