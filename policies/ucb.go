package policies

import (
	"fmt"
	"math"

	"github.com/zeu5/tabular-rl/core"
)

// UCBPolicy explores by picking the action maximising
// Q[s,a] + Constant*sqrt(ln N(s) / N(s,a)), where N counts how often the
// policy picked each pair. Actions never tried in a state are picked first,
// lowest index first.
type UCBPolicy struct {
	Constant float64

	visits *core.QTable
}

var _ core.Policy = &UCBPolicy{}
var _ core.Validator = &UCBPolicy{}

func NewUCBPolicy(constant float64) (*UCBPolicy, error) {
	u := &UCBPolicy{Constant: constant}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *UCBPolicy) Validate() error {
	if math.IsNaN(u.Constant) || math.IsInf(u.Constant, 0) || u.Constant < 0 {
		return fmt.Errorf("%w: ucb constant must be finite and non negative, got %f", core.ErrConfiguration, u.Constant)
	}
	return nil
}

func (u *UCBPolicy) Reset() {
	u.visits = nil
}

func (u *UCBPolicy) ResetEpisode(_ *core.EpisodeContext) {}

func (u *UCBPolicy) UpdateEpisode(_ *core.EpisodeContext) {}

// Visits returns how often the action was picked in the state.
func (u *UCBPolicy) Visits(state, action int) int {
	if u.visits == nil {
		return 0
	}
	return int(u.visits.Get(state, action))
}

func (u *UCBPolicy) PickAction(_ *core.StepContext, state int, q *core.QTable) int {
	states, actions := q.Dims()
	if u.visits == nil {
		u.visits, _ = core.NewQTable(states, actions)
	}

	counts := u.visits.Row(state)
	total := float64(0)
	pick := -1
	for a, n := range counts {
		if n == 0 {
			pick = a
			break
		}
		total += n
	}
	if pick < 0 {
		best := math.Inf(-1)
		logTotal := math.Log(total)
		for a, n := range counts {
			score := q.Get(state, a) + u.Constant*math.Sqrt(logTotal/n)
			if score > best {
				best = score
				pick = a
			}
		}
	}
	u.visits.Set(state, pick, counts[pick]+1)
	return pick
}

type UCBPolicyConstructor struct {
	constant float64
}

var _ core.PolicyConstructor = &UCBPolicyConstructor{}

func NewUCBPolicyConstructor(constant float64) *UCBPolicyConstructor {
	return &UCBPolicyConstructor{constant: constant}
}

func (u *UCBPolicyConstructor) NewPolicy() core.Policy {
	return &UCBPolicy{Constant: u.constant}
}
