package policies

import (
	"fmt"

	"github.com/zeu5/tabular-rl/core"
)

// RandomPolicy picks actions uniformly at random. As an exploration policy
// it ignores the table; as a fixed policy it is the baseline greedy
// policies are measured against.
type RandomPolicy struct {
	actions []core.Action
}

var _ core.Policy = &RandomPolicy{}
var _ core.FixedPolicy = &RandomPolicy{}

// NewRandomPolicy returns a random policy over the given actions. The
// actions are only needed when the policy is used with Act.
func NewRandomPolicy(actions ...core.Action) *RandomPolicy {
	return &RandomPolicy{
		actions: actions,
	}
}

func (r *RandomPolicy) Reset() {}

func (r *RandomPolicy) UpdateEpisode(_ *core.EpisodeContext) {}

func (r *RandomPolicy) ResetEpisode(_ *core.EpisodeContext) {}

func (r *RandomPolicy) PickAction(step *core.StepContext, _ int, q *core.QTable) int {
	_, actions := q.Dims()
	return step.Rand.Intn(actions)
}

func (r *RandomPolicy) Act(step *core.StepContext, _ core.State) (core.Action, error) {
	if len(r.actions) == 0 {
		return nil, fmt.Errorf("%w: random policy has no actions", core.ErrEvaluation)
	}
	return r.actions[step.Rand.Intn(len(r.actions))], nil
}

type RandomPolicyConstructor struct{}

func (r *RandomPolicyConstructor) NewPolicy() core.Policy {
	return NewRandomPolicy()
}
