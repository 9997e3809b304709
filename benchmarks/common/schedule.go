package common

import (
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/policies"
)

// Schedule is constant at Epsilon unless EpsilonMin is lower, in which case
// epsilon decays linearly to EpsilonMin over the training episodes.
func (f *Flags) Schedule() policies.Schedule {
	if f.EpsilonMin >= f.Epsilon {
		return policies.ConstantSchedule(f.Epsilon)
	}
	return &policies.LinearSchedule{
		Start:    f.Epsilon,
		End:      f.EpsilonMin,
		Episodes: f.Episodes,
	}
}

// ExplorationExperiments lists the behaviour policies a comparison trains
// against the same environment.
func (f *Flags) ExplorationExperiments(env core.EnvironmentConstructor) []*core.ParallelExperiment {
	return []*core.ParallelExperiment{
		{
			Name:        "EpsilonGreedy",
			Environment: env,
			Policy:      policies.NewEpsilonGreedyPolicyConstructor(policies.ConstantSchedule(f.Epsilon)),
			Seed:        f.Seed,
		},
		{
			Name:        "EpsilonGreedyDecay",
			Environment: env,
			Policy: policies.NewEpsilonGreedyPolicyConstructor(&policies.ExponentialSchedule{
				Start: f.Epsilon,
				Min:   0.05,
				Decay: 0.995,
			}),
			Seed: f.Seed,
		},
		{
			Name:        "Softmax",
			Environment: env,
			Policy:      policies.NewSoftmaxPolicyConstructor(f.Temperature),
			Seed:        f.Seed,
		},
		{
			Name:        "UCB",
			Environment: env,
			Policy:      policies.NewUCBPolicyConstructor(f.UCBConstant),
			Seed:        f.Seed,
		},
		{
			Name:        "Random",
			Environment: env,
			Policy:      &policies.RandomPolicyConstructor{},
			Seed:        f.Seed,
		},
	}
}
