// urbannexus runs smart-city deployment governance assessments: a
// rule-checked, checkpoint-gated multi-agent pipeline that emits a
// hash-chained decision trace.
//
// Usage:
//
//	urbannexus run --zone <id> [--brief <path>] [--goal Type[:Priority]]...
//	urbannexus verify (<trace-id> | --file <export.json>)
//	urbannexus traces
//	urbannexus serve
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/urbannexus/core/config"
	"github.com/urbannexus/core/critic"
	"github.com/urbannexus/core/rule"
	"github.com/urbannexus/core/specialist"
	"github.com/urbannexus/core/validator"
	"github.com/urbannexus/core/workflow"
	"github.com/urbannexus/core/zones"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "urbannexus",
	Short: "Deployment governance assessments for smart-city rollouts",
	Long: "urbannexus assesses proposed smart-city deployments through parallel\n" +
		"specialist analysis, critic and validator review gates, and a declarative\n" +
		"governance rule set, producing a verifiable hash-chained decision trace.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(tracesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// loadRules returns the configured rule set, falling back to the
// built-in smart-city rules when no path is set.
func loadRules(cfg config.Config) (*rule.RuleSet, error) {
	if cfg.RulesPath == "" {
		return rule.SmartCityRules(), nil
	}
	rs, err := rule.LoadFile(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return rs, nil
}

func loadZones(cfg config.Config) (zones.Store, error) {
	if cfg.ZonesPath == "" {
		return zones.NewStore(nil), nil
	}
	zs, err := zones.Open(cfg.ZonesPath)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	return zs, nil
}

// buildOrchestrator wires the full agent roster. Collaborator clients
// (LLM, retrieval) are left unset; each agent degrades deterministically
// without them.
func buildOrchestrator(cfg config.Config, rules *rule.RuleSet, sink workflow.EventSink, log *slog.Logger) (*workflow.Orchestrator, error) {
	zoneStore, err := loadZones(cfg)
	if err != nil {
		return nil, err
	}

	deps := specialist.Deps{Log: log}
	return workflow.New(workflow.Config{
		Site: specialist.NewSiteViability(zoneStore),
		Value: []specialist.ValueSpecialist{
			specialist.NewSustainability(deps),
			specialist.NewConnectivity(deps),
		},
		Risk: []specialist.RiskSpecialist{
			specialist.NewPublicSafety(deps),
			specialist.NewPrivacy(deps),
			specialist.NewOTSecurity(deps),
		},
		Critic:       critic.New(nil, log),
		Validator:    validator.New(rules, nil, nil, log),
		Rules:        rules,
		BranchBudget: cfg.BranchBudget,
		Sink:         sink,
		Logger:       log,
	})
}
