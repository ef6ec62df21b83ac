package infrastructure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stallingScenario = `
name: stall-and-restock
horizon: 1h
banks:
  - id: bank
suppliers:
  - id: acme
    unitPrice: 2.5
    stock: 8
    restockAmount: 5
    ordering: priority
    handlingDelay: {mean: 1m}
    restockInterval: {mean: 30m}
    transportDelay: {mean: 2m}
buyers:
  - id: shop
    product: widget
    amount: 5
    suppliers: [acme]
    bank: bank
    demandInterval: {mean: 10m}
    warehouseDelay: {mean: 1m}
`

func parseValid(t *testing.T, data string) *Scenario {
	t.Helper()
	scenario, err := ParseScenario([]byte(data))
	require.NoError(t, err)
	require.NoError(t, scenario.Validate())
	return scenario
}

func TestParseScenario(t *testing.T) {
	scenario := parseValid(t, stallingScenario)

	assert.Equal(t, "stall-and-restock", scenario.Name)
	assert.Equal(t, time.Hour, scenario.Horizon)
	require.Len(t, scenario.Suppliers, 1)
	assert.Equal(t, 2.5, scenario.Suppliers[0].UnitPrice)
	assert.Equal(t, 30*time.Minute, scenario.Suppliers[0].RestockInterval.Mean)
	require.Len(t, scenario.Buyers, 1)
	assert.Equal(t, []string{"acme"}, scenario.Buyers[0].Suppliers)
}

func TestLoadScenarioValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(stallingScenario), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "stall-and-restock", scenario.Name)

	require.NoError(t, os.WriteFile(path, []byte("name: empty\nhorizon: 1h\n"), 0644))
	_, err = LoadScenario(path)
	assert.Error(t, err)

	_, err = LoadScenario(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsInconsistentScenarios(t *testing.T) {
	cases := map[string]func(s *Scenario){
		"no horizon":              func(s *Scenario) { s.Horizon = 0 },
		"duplicate id":            func(s *Scenario) { s.Banks[0].Id = "acme" },
		"unknown bank":            func(s *Scenario) { s.Buyers[0].Bank = "vault" },
		"unknown supplier":        func(s *Scenario) { s.Buyers[0].Suppliers = []string{"globex"} },
		"supplier as bank":        func(s *Scenario) { s.Buyers[0].Bank = "acme" },
		"empty amount":            func(s *Scenario) { s.Buyers[0].Amount = 0 },
		"instant demands":         func(s *Scenario) { s.Buyers[0].DemandInterval = DelayParams{} },
		"instant restocks":        func(s *Scenario) { s.Suppliers[0].RestockInterval = DelayParams{} },
		"buyer without suppliers": func(s *Scenario) { s.Buyers[0].Suppliers = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			scenario := parseValid(t, stallingScenario)
			mutate(scenario)
			assert.Error(t, scenario.Validate())
		})
	}
}

func TestResolveScenarioAppliesTheHorizonOverride(t *testing.T) {
	params := NewSimulationParameters("run", 1, stallingScenario, 90_000, 1, false, "")
	require.True(t, IsSimulationParametersValid(params))

	scenario, err := ResolveScenario(params)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, scenario.Horizon)

	params.HorizonMillis = 0
	scenario, err = ResolveScenario(params)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, scenario.Horizon)
}

func TestSimulationParametersValidity(t *testing.T) {
	assert.False(t, IsSimulationParametersValid(NewSimulationParameters("", 1, stallingScenario, 0, 1, false, "")))
	assert.False(t, IsSimulationParametersValid(NewSimulationParameters("run", 1, "", 0, 1, false, "")))
	assert.False(t, IsSimulationParametersValid(NewSimulationParameters("run", 1, stallingScenario, 0, 1, true, "")))
	assert.True(t, IsSimulationParametersValid(NewSimulationParameters("run", 1, stallingScenario, 0, 1, true, "DemandChain")))
}

func TestExpandReplications(t *testing.T) {
	params := NewSimulationParameters("ignored", 10, stallingScenario, 0, 3, false, "")

	expanded, err := ExpandReplications(params, "campaign")
	require.NoError(t, err)
	require.Len(t, expanded, 3)
	for i, replication := range expanded {
		assert.Equal(t, int64(10+i), replication.Seed)
		assert.Equal(t, 1, replication.Replications)
	}
	assert.Equal(t, "campaign-2", expanded[2].RunId)
	assert.Equal(t, []int64{10, 11, 12}, ReplicationSeeds(10, 3))
	assert.Equal(t, []int64{5}, ReplicationSeeds(5, 0))
}
