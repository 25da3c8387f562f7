package checkpoint

import (
	"github.com/urbannexus/core/finding"
	"github.com/urbannexus/core/rule"
	"github.com/urbannexus/core/state"
)

// Standard gates for the smart-city assessment workflow.

// CriticGate ensures every risk-analysis specialist has completed with a
// confidence score before the critic stage runs.
func CriticGate() Checkpoint {
	keys := make([]string, 0, len(state.RiskTopics))
	preds := make([]rule.Predicate, 0, len(state.RiskTopics))
	for _, topic := range state.RiskTopics {
		key := state.Key(topic, state.SuffixConfidence)
		keys = append(keys, key)
		preds = append(preds, rule.AtLeast(key, 0))
	}
	return Checkpoint{
		CheckpointID:      "CRITIC_GATE",
		Description:       "Ensures all risk specialists have completed before the Critic runs",
		RequiredStateKeys: keys,
		ValidationRules: []rule.Rule{{
			RuleID:         "CG001",
			Description:    "All specialist findings must have confidence scores",
			Trigger:        rule.All(preds...),
			RequiredAction: "allow_critic",
			Effect:         rule.EffectNone,
			Severity:       rule.SeverityNone,
		}},
	}
}

// ValidatorGate ensures the critic has reviewed the given topic's finding
// before the validator runs on it.
func ValidatorGate(topic finding.Topic) Checkpoint {
	critiqueKey := state.CritiqueKey(topic, state.SuffixStatus)
	return Checkpoint{
		CheckpointID: "VALIDATOR_GATE_" + string(topic),
		Description:  "Ensures the Critic has reviewed the " + string(topic) + " finding before the Validator runs",
		RequiredStateKeys: []string{
			state.Key(topic, state.SuffixConfidence),
			critiqueKey,
		},
		ValidationRules: []rule.Rule{{
			RuleID:         "VG001_" + string(topic),
			Description:    "Critic must have assigned a review status",
			Trigger:        rule.InSet(critiqueKey, "ok", "revise"),
			RequiredAction: "allow_validation",
			Effect:         rule.EffectNone,
			Severity:       rule.SeverityNone,
		}},
	}
}
