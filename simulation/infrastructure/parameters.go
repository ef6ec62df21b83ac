package infrastructure

import (
	"errors"
	"fmt"
	"time"
)

// SimulationParameters is the JSON event accepted by the simulation handler.
type SimulationParameters struct {
	RunId          string
	Seed           int64
	Scenario       string
	HorizonMillis  int64
	Replications   int
	ExportChains   bool
	ChainTableName string
}

func NewSimulationParameters(runId string, seed int64, scenario string, horizonMillis int64, replications int, exportChains bool, chainTableName string) *SimulationParameters {
	return &SimulationParameters{RunId: runId, Seed: seed, Scenario: scenario, HorizonMillis: horizonMillis, Replications: replications, ExportChains: exportChains, ChainTableName: chainTableName}
}

func IsSimulationParametersValid(params *SimulationParameters) bool {
	return params.RunId != "" &&
		params.Scenario != "" &&
		params.HorizonMillis >= 0 &&
		params.Replications >= 0 &&
		(!params.ExportChains || params.ChainTableName != "")
}

// ResolveScenario parses the inline scenario and applies the horizon override.
func ResolveScenario(params *SimulationParameters) (*Scenario, error) {
	scenario, err := ParseScenario([]byte(params.Scenario))
	if err != nil {
		return nil, err
	}
	if params.HorizonMillis > 0 {
		scenario.Horizon = time.Duration(params.HorizonMillis) * time.Millisecond
	}
	if err = scenario.Validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

// ExpandReplications derives one parameter set per replication. Seeds are
// consecutive from the base seed so a campaign can be replayed exactly.
func ExpandReplications(params *SimulationParameters, runId string) ([]SimulationParameters, error) {
	replications := max(params.Replications, 1)
	paramsList := make([]SimulationParameters, 0, replications)
	for i := range replications {
		replication := *params
		replication.RunId = fmt.Sprintf("%v-%v", runId, i)
		replication.Seed = params.Seed + int64(i)
		replication.Replications = 1
		if !IsSimulationParametersValid(&replication) {
			return nil, errors.New("simulation parameters are not valid")
		}
		paramsList = append(paramsList, replication)
	}
	return paramsList, nil
}

// ReplicationSeeds lists the seeds ExpandReplications would assign.
func ReplicationSeeds(baseSeed int64, replications int) []int64 {
	seeds := make([]int64, 0, max(replications, 1))
	for i := range max(replications, 1) {
		seeds = append(seeds, baseSeed+int64(i))
	}
	return seeds
}
