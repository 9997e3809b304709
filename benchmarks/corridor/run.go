package corridor

import (
	"github.com/zeu5/tabular-rl/benchmarks/common"
	"github.com/zeu5/tabular-rl/core"
)

func ConfigFromFlags(flags *common.Flags) Config {
	return Config{
		Length:      flags.Length,
		Start:       flags.Start,
		RewardLeft:  flags.RewardLeft,
		RewardRight: flags.RewardRight,
		Discount:    flags.Discount,
	}
}

// PrepareExplorationComparison validates the corridor configuration and sets
// up a comparison of the exploration policies on it.
func PrepareExplorationComparison(flags *common.Flags) (*core.ParallelComparison, error) {
	config := ConfigFromFlags(flags)
	if _, err := NewEnvironment(config); err != nil {
		return nil, err
	}
	return common.PrepareComparison(flags, NewEnvironmentConstructor(config), config.Discount), nil
}
