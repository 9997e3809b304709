package policies

import (
	"github.com/zeu5/tabular-rl/core"
	"golang.org/x/exp/rand"
)

// EpsilonGreedyAction returns a uniformly drawn action index with
// probability epsilon and the greedy one otherwise. Greedy ties go to the
// lowest index. With epsilon 0 no random number is drawn.
func EpsilonGreedyAction(q *core.QTable, state int, epsilon float64, r *rand.Rand) (int, error) {
	if err := validateEpsilon(epsilon); err != nil {
		return 0, err
	}
	return epsilonGreedy(q, state, epsilon, r), nil
}

func epsilonGreedy(q *core.QTable, state int, epsilon float64, r *rand.Rand) int {
	if epsilon > 0 && r.Float64() < epsilon {
		_, actions := q.Dims()
		return r.Intn(actions)
	}
	a, _ := q.Max(state)
	return a
}

// EpsilonGreedyPolicy explores with an epsilon that follows a schedule over
// episodes.
type EpsilonGreedyPolicy struct {
	schedule Schedule
	epsilon  float64
}

var _ core.Policy = &EpsilonGreedyPolicy{}
var _ core.Validator = &EpsilonGreedyPolicy{}

func NewEpsilonGreedyPolicy(schedule Schedule) (*EpsilonGreedyPolicy, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}
	return &EpsilonGreedyPolicy{
		schedule: schedule,
		epsilon:  schedule.Value(1),
	}, nil
}

func (e *EpsilonGreedyPolicy) Validate() error {
	return ValidateSchedule(e.schedule)
}

// Epsilon is the exploration rate of the current episode.
func (e *EpsilonGreedyPolicy) Epsilon() float64 {
	return e.epsilon
}

func (e *EpsilonGreedyPolicy) Reset() {
	e.epsilon = e.schedule.Value(1)
}

func (e *EpsilonGreedyPolicy) ResetEpisode(eCtx *core.EpisodeContext) {
	e.epsilon = e.schedule.Value(eCtx.Episode)
}

func (e *EpsilonGreedyPolicy) UpdateEpisode(_ *core.EpisodeContext) {}

func (e *EpsilonGreedyPolicy) PickAction(step *core.StepContext, state int, q *core.QTable) int {
	return epsilonGreedy(q, state, e.epsilon, step.Rand)
}

type EpsilonGreedyPolicyConstructor struct {
	schedule Schedule
}

var _ core.PolicyConstructor = &EpsilonGreedyPolicyConstructor{}

func NewEpsilonGreedyPolicyConstructor(schedule Schedule) *EpsilonGreedyPolicyConstructor {
	return &EpsilonGreedyPolicyConstructor{
		schedule: schedule,
	}
}

// NewPolicy skips validation; the trainer validates on construction.
func (c *EpsilonGreedyPolicyConstructor) NewPolicy() core.Policy {
	return &EpsilonGreedyPolicy{
		schedule: c.schedule,
		epsilon:  c.schedule.Value(1),
	}
}
