package config

import (
	"fmt"

	"github.com/kilianp07/crewsched/core/cp"
	"github.com/kilianp07/crewsched/core/scheduling"
)

// DefaultSolverParams runs a worker portfolio with progress logging and a
// time limit per phase.
const DefaultSolverParams = "num_search_workers:20,log_search_progress:true,max_time_in_seconds:300"

// SolverConfig tunes both solve phases.
type SolverConfig struct {
	// Params is the free-form "key:value" parameter string.
	Params         string `json:"params"`
	PoolMultiplier int    `json:"pool_multiplier"`
	// ModelDumpPath receives the phase two model when set.
	ModelDumpPath string `json:"model_dump_path"`
}

func (c *SolverConfig) SetDefaults() {
	if c.Params == "" {
		c.Params = DefaultSolverParams
	}
	if c.PoolMultiplier == 0 {
		c.PoolMultiplier = scheduling.DefaultPoolMultiplier
	}
}

func (c SolverConfig) Validate() error {
	if c.PoolMultiplier < 1 {
		return fmt.Errorf("pool_multiplier must be at least 1")
	}
	_, err := c.Parameters()
	return err
}

// Parameters parses Params.
func (c SolverConfig) Parameters() (cp.Parameters, error) {
	return cp.ParseParameters(c.Params)
}

// Orchestrator builds the orchestrator configuration.
func (c Config) Orchestrator() (scheduling.Config, error) {
	params, err := c.Solver.Parameters()
	if err != nil {
		return scheduling.Config{}, err
	}
	return scheduling.Config{
		Regulations:    c.Regulations,
		Params:         params,
		PoolMultiplier: c.Solver.PoolMultiplier,
		ModelDumpPath:  c.Solver.ModelDumpPath,
	}, nil
}
