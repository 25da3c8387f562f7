// Package config loads process configuration from environment
// variables. Rule definitions themselves live in YAML files; this
// package only locates them and wires the infrastructure endpoints
// around the orchestrator.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration for an orchestrator instance.
type Config struct {
	// RulesPath optionally points to a YAML rule set. When empty the
	// built-in smart-city rules are used.
	RulesPath string `env:"URBANNEXUS_RULES_PATH"`

	// ZonesPath optionally points to a JSON zone registry file.
	ZonesPath string `env:"URBANNEXUS_ZONES_PATH"`

	// DBPath is the SQLite file holding trace exports.
	DBPath string `env:"URBANNEXUS_DB_PATH" envDefault:"urbannexus.db"`

	// RedisURL enables progress streaming when set, e.g.
	// redis://localhost:6379/0.
	RedisURL string `env:"URBANNEXUS_REDIS_URL"`

	// EtcdEndpoints enables instance registration when non-empty.
	EtcdEndpoints []string `env:"URBANNEXUS_ETCD_ENDPOINTS" envSeparator:","`

	// Port is the gRPC health server port.
	Port int `env:"URBANNEXUS_PORT" envDefault:"50051"`

	// BranchBudget bounds each parallel workflow branch.
	BranchBudget time.Duration `env:"URBANNEXUS_BRANCH_BUDGET" envDefault:"90s"`

	// GracefulTimeout bounds server shutdown.
	GracefulTimeout time.Duration `env:"URBANNEXUS_GRACEFUL_TIMEOUT" envDefault:"30s"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges the env parser cannot express.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.BranchBudget <= 0 {
		return fmt.Errorf("branch budget must be positive, got %s", c.BranchBudget)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path must not be empty")
	}
	return nil
}
