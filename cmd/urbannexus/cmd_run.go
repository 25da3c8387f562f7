package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/urbannexus/core/config"
	"github.com/urbannexus/core/store"
	"github.com/urbannexus/core/stream"
	"github.com/urbannexus/core/types"
	"github.com/urbannexus/core/workflow"
)

var runOpts struct {
	zone      string
	briefPath string
	goals     []string
	out       string
	noSave    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one governance assessment and record its trace",
	Long: `Runs a full assessment session for a zone: site viability, parallel
value and risk analysis, critic and validator review, and rule-governed
synthesis. The decision brief is printed and the verifiable trace export
is saved to the trace store unless --no-save is set.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runOpts.zone, "zone", "", "Zone ID to assess (required)")
	runCmd.Flags().StringVar(&runOpts.briefPath, "brief", "", "Path to a project brief JSON file; derived from proposals when omitted")
	runCmd.Flags().StringSliceVar(&runOpts.goals, "goal", nil, "Zone goal as Type[:Priority], e.g. Energy:High (repeatable)")
	runCmd.Flags().StringVarP(&runOpts.out, "out", "o", "", "Write the trace export JSON to this path")
	runCmd.Flags().BoolVar(&runOpts.noSave, "no-save", false, "Skip persisting the export to the trace store")
	_ = runCmd.MarkFlagRequired("zone")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger()

	goals, err := parseGoals(runOpts.goals)
	if err != nil {
		return err
	}

	var projectBrief *types.ProjectBrief
	if runOpts.briefPath != "" {
		projectBrief, err = readBriefFile(runOpts.briefPath)
		if err != nil {
			return err
		}
	}

	rules, err := loadRules(cfg)
	if err != nil {
		return err
	}

	var sink workflow.EventSink
	if cfg.RedisURL != "" {
		client, err := stream.NewClient(stream.Options{URL: cfg.RedisURL})
		if err != nil {
			return fmt.Errorf("connect stream: %w", err)
		}
		defer client.Close()
		sink = stream.NewSink(client, stream.DefaultChannelPrefix, log)
	}

	orch, err := buildOrchestrator(cfg, rules, sink, log)
	if err != nil {
		return err
	}

	res, err := orch.Run(cmd.Context(), workflow.Input{
		ZoneID: runOpts.zone,
		Goals:  goals,
		Brief:  projectBrief,
	})
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	if !runOpts.noSave {
		ts, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open trace store: %w", err)
		}
		defer ts.Close()
		if err := ts.SaveExport(cmd.Context(), res.Export); err != nil {
			return fmt.Errorf("save trace: %w", err)
		}
	}

	if runOpts.out != "" {
		data, err := json.MarshalIndent(res.Export, "", "  ")
		if err != nil {
			return fmt.Errorf("encode export: %w", err)
		}
		if err := os.WriteFile(runOpts.out, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	}

	b := res.Brief
	fmt.Printf("session:    %s\n", res.SessionID)
	fmt.Printf("trace:      %s\n", res.Export.TraceID)
	fmt.Printf("decision:   %s\n", b.OverallDecision)
	fmt.Printf("confidence: %.2f\n", b.OverallConfidence)
	fmt.Printf("review:     %t\n", b.NeedsHumanReview)
	if b.HumanReviewNote != "" {
		fmt.Printf("note:       %s\n", b.HumanReviewNote)
	}
	return nil
}

// parseGoals converts Type[:Priority] flags into zone goals. Priority
// defaults to Medium.
func parseGoals(raw []string) ([]types.Goal, error) {
	goals := make([]types.Goal, 0, len(raw))
	for _, r := range raw {
		typePart, prioPart, hasPrio := strings.Cut(r, ":")
		g := types.Goal{
			Type:        types.GoalType(typePart),
			Description: fmt.Sprintf("%s goal for this assessment", typePart),
			Priority:    types.PriorityMedium,
		}
		if hasPrio {
			g.Priority = types.Priority(prioPart)
		}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("goal %q: %w", r, err)
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func readBriefFile(path string) (*types.ProjectBrief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brief: %w", err)
	}
	var b types.ProjectBrief
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse brief %s: %w", path, err)
	}
	return &b, nil
}
