package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbannexus/core/config"
	"github.com/urbannexus/core/rule"
	"github.com/urbannexus/core/types"
)

func TestParseGoals(t *testing.T) {
	goals, err := parseGoals([]string{"Energy:High", "Connectivity"})
	require.NoError(t, err)
	require.Len(t, goals, 2)

	assert.Equal(t, types.GoalEnergy, goals[0].Type)
	assert.Equal(t, types.PriorityHigh, goals[0].Priority)
	assert.Equal(t, types.GoalConnectivity, goals[1].Type)
	assert.Equal(t, types.PriorityMedium, goals[1].Priority)
}

func TestParseGoals_Invalid(t *testing.T) {
	_, err := parseGoals([]string{"Teleportation"})
	assert.Error(t, err)

	_, err = parseGoals([]string{"Energy:Sometimes"})
	assert.Error(t, err)
}

func TestReadBriefFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.json")
	data := `{"corridors":["5th Ave"],"sensors":{"video":true,"alpr":false},"storage":"edge"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	b, err := readBriefFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"5th Ave"}, b.Corridors)
	assert.True(t, b.SensorEnabled("video"))
	assert.False(t, b.SensorEnabled("alpr"))
	assert.True(t, b.EdgeStorage())
}

func TestReadBriefFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := readBriefFile(path)
	assert.Error(t, err)
}

func TestLoadRules_Default(t *testing.T) {
	rs, err := loadRules(config.Config{})
	require.NoError(t, err)
	assert.Equal(t, rule.SmartCityRules().Len(), rs.Len())
}

func TestRuleIDs(t *testing.T) {
	ids := ruleIDs(rule.SmartCityRules())
	assert.Contains(t, ids, "SC-CJIS-001")
	assert.Contains(t, ids, "SC-RISK-001")
}

func TestBuildOrchestrator_Offline(t *testing.T) {
	orch, err := buildOrchestrator(config.Config{}, rule.SmartCityRules(), nil, newLogger())
	require.NoError(t, err)
	assert.NotNil(t, orch)
}
