package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/urbannexus/core/config"
	"github.com/urbannexus/core/registry"
	"github.com/urbannexus/core/rule"
	"github.com/urbannexus/core/serve"
	"github.com/urbannexus/core/store"
	"github.com/urbannexus/core/stream"
	"github.com/urbannexus/core/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a long-lived orchestrator instance",
	Long: `Starts the orchestrator as a service: a gRPC health endpoint, the
trace store, optional Redis progress streaming, and optional etcd
instance registration so operators can discover the fleet and audit
which rule set each instance enforces. The gRPC surface is health and
registration only; assessments are submitted with the run command.
Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger()

	rules, err := loadRules(cfg)
	if err != nil {
		return err
	}

	ts, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open trace store: %w", err)
	}
	defer ts.Close()

	var sink workflow.EventSink
	if cfg.RedisURL != "" {
		client, err := stream.NewClient(stream.Options{URL: cfg.RedisURL})
		if err != nil {
			return fmt.Errorf("connect stream: %w", err)
		}
		defer client.Close()
		sink = stream.NewSink(client, stream.DefaultChannelPrefix, log)
	}

	// The pipeline wiring is validated up front so a misconfigured
	// instance never reports healthy. The instance itself is not held:
	// serve exposes no assessment RPC yet.
	if _, err := buildOrchestrator(cfg, rules, sink, log); err != nil {
		return err
	}

	srv, err := serve.NewServer(&serve.Config{
		Port:            cfg.Port,
		GracefulTimeout: cfg.GracefulTimeout,
		Logger:          log,
	})
	if err != nil {
		return err
	}

	if len(cfg.EtcdEndpoints) > 0 {
		reg, err := registry.NewClient(registry.Config{Endpoints: cfg.EtcdEndpoints})
		if err != nil {
			return fmt.Errorf("connect registry: %w", err)
		}
		defer reg.Close()

		instanceID := uuid.NewString()
		regCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		err = reg.Register(regCtx, registry.InstanceInfo{
			InstanceID: instanceID,
			Endpoint:   fmt.Sprintf("%s:%d", hostname(), srv.Port()),
			Version:    version,
			RuleSetIDs: ruleIDs(rules),
			StartedAt:  time.Now().UTC(),
		})
		cancel()
		if err != nil {
			return fmt.Errorf("register instance: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := reg.Deregister(ctx, instanceID); err != nil {
				log.Warn("deregister failed", "instance_id", instanceID, "error", err)
			}
		}()
		log.Info("instance registered", "instance_id", instanceID, "rules", rules.Len())
	}

	srv.SetServing()
	return srv.Serve(cmd.Context())
}

func ruleIDs(rs *rule.RuleSet) []string {
	rules := rs.Rules()
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.RuleID)
	}
	return ids
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "localhost"
}
