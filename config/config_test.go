package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "urbannexus.db", cfg.DBPath)
	assert.Equal(t, 50051, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.BranchBudget)
	assert.Equal(t, 30*time.Second, cfg.GracefulTimeout)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.EtcdEndpoints)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("URBANNEXUS_RULES_PATH", "rules.yaml")
	t.Setenv("URBANNEXUS_DB_PATH", "/var/lib/urbannexus/traces.db")
	t.Setenv("URBANNEXUS_ETCD_ENDPOINTS", "etcd-a:2379,etcd-b:2379")
	t.Setenv("URBANNEXUS_PORT", "9090")
	t.Setenv("URBANNEXUS_BRANCH_BUDGET", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rules.yaml", cfg.RulesPath)
	assert.Equal(t, "/var/lib/urbannexus/traces.db", cfg.DBPath)
	assert.Equal(t, []string{"etcd-a:2379", "etcd-b:2379"}, cfg.EtcdEndpoints)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.BranchBudget)
}

func TestValidate(t *testing.T) {
	valid := Config{DBPath: "x.db", Port: 50051, BranchBudget: time.Minute}
	require.NoError(t, valid.Validate())

	badPort := valid
	badPort.Port = 70000
	assert.Error(t, badPort.Validate())

	badBudget := valid
	badBudget.BranchBudget = 0
	assert.Error(t, badBudget.Validate())

	noDB := valid
	noDB.DBPath = ""
	assert.Error(t, noDB.Validate())
}
