package gridworld

import (
	"github.com/zeu5/tabular-rl/benchmarks/common"
	"github.com/zeu5/tabular-rl/core"
)

// ConfigFromFlags keeps the default layout when the grid size matches it and
// otherwise starts in the bottom left corner with the goal in the top right
// and no pits.
func ConfigFromFlags(flags *common.Flags) Config {
	config := DefaultConfig()
	if flags.Rows != config.Rows || flags.Cols != config.Cols {
		config.Rows = flags.Rows
		config.Cols = flags.Cols
		config.Start = Cell{Row: flags.Rows - 1, Col: 0}
		config.Goal = Cell{Row: 0, Col: flags.Cols - 1}
		config.Pits = nil
	}
	config.Slip = flags.Slip
	config.StepPenalty = flags.StepPenalty
	config.Discount = flags.Discount
	return config
}

type EnvironmentConstructor struct {
	config Config
}

var _ core.EnvironmentConstructor = &EnvironmentConstructor{}

func NewEnvironmentConstructor(config Config) *EnvironmentConstructor {
	return &EnvironmentConstructor{config: config}
}

// NewEnvironment panics on an invalid config; validate it with
// NewEnvironment first.
func (c *EnvironmentConstructor) NewEnvironment(_ int) core.Environment {
	env, err := NewEnvironment(c.config)
	if err != nil {
		panic(err)
	}
	return env
}

func PrepareExplorationComparison(flags *common.Flags) (*core.ParallelComparison, error) {
	config := ConfigFromFlags(flags)
	if _, err := NewEnvironment(config); err != nil {
		return nil, err
	}
	return common.PrepareComparison(flags, NewEnvironmentConstructor(config), config.Discount), nil
}
