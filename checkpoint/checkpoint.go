// Package checkpoint implements verification gates between workflow
// stages. A Checkpoint names the state keys that must exist and the
// precondition rules that must hold before a stage may proceed.
//
// Checkpoint rules are preconditions (expected true), the opposite usage
// from governance rules, which are triggers (expected false). Both share
// the rule.Rule type; a checkpoint failure reason is produced when a
// precondition rule does NOT hold.
//
// Checkpoints are pure and stateless: CanPass twice with identical state
// yields identical results, and it never panics or returns an error;
// every failure class is surfaced in the reasons list.
package checkpoint

import (
	"context"
	"fmt"
	"os"

	"github.com/urbannexus/core/rule"
	"gopkg.in/yaml.v3"
)

// Checkpoint is a gate between workflow stages. Checkpoints are static
// configuration with the same lifecycle as rules: defined at process
// start, validated at load time, immutable afterward.
type Checkpoint struct {
	// CheckpointID uniquely identifies the gate (e.g., "CRITIC_GATE").
	CheckpointID string `yaml:"checkpoint_id" json:"checkpoint_id"`

	// Description says what this checkpoint verifies.
	Description string `yaml:"description" json:"description"`

	// RequiredStateKeys must all be present and non-nil in the snapshot.
	RequiredStateKeys []string `yaml:"required_state_keys" json:"required_state_keys"`

	// ValidationRules are preconditions that must hold.
	ValidationRules []rule.Rule `yaml:"validation_rules,omitempty" json:"validation_rules,omitempty"`
}

// Validate performs the static configuration-load checks.
func (c Checkpoint) Validate() error {
	if c.CheckpointID == "" {
		return fmt.Errorf("checkpoint ID is required")
	}
	if c.Description == "" {
		return fmt.Errorf("checkpoint %s: description is required", c.CheckpointID)
	}
	for i, r := range c.ValidationRules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("checkpoint %s: validation rule %d: %w", c.CheckpointID, i, err)
		}
	}
	return nil
}

// CanPass checks whether the state snapshot may pass through this gate.
// It returns false plus one human-readable reason per failure: missing
// or nil required keys, and precondition rules that did not hold. A rule
// whose evaluation fails internally counts as "did not hold" (the
// evaluator reports the failure to observability).
func (c Checkpoint) CanPass(ctx context.Context, eval *rule.Evaluator, state map[string]any) (bool, []string) {
	var reasons []string

	for _, key := range c.RequiredStateKeys {
		if v, ok := state[key]; !ok || v == nil {
			reasons = append(reasons, fmt.Sprintf("missing required state: %s", key))
		}
	}

	for _, r := range c.ValidationRules {
		if !eval.Evaluate(ctx, r, state) {
			reasons = append(reasons, fmt.Sprintf("failed validation: %s", r.Description))
		}
	}

	return len(reasons) == 0, reasons
}

// checkpointsFile is the YAML document shape for checkpoint files.
type checkpointsFile struct {
	Checkpoints []Checkpoint `yaml:"checkpoints"`
}

// LoadFile reads a YAML checkpoint configuration file, validating every
// gate and its precondition rules at load time.
func LoadFile(path string) ([]Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoints file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML checkpoint configuration data.
func Parse(data []byte) ([]Checkpoint, error) {
	var file checkpointsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse checkpoints file: %w", err)
	}
	seen := make(map[string]bool, len(file.Checkpoints))
	for i, c := range file.Checkpoints {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("checkpoint at index %d: %w", i, err)
		}
		if seen[c.CheckpointID] {
			return nil, fmt.Errorf("duplicate checkpoint ID: %s", c.CheckpointID)
		}
		seen[c.CheckpointID] = true
	}
	return file.Checkpoints, nil
}
