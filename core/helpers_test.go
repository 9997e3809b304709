package core

import (
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/exp/rand"
)

var errBrokenCell = errors.New("broken cell")

type chainState int

func (c chainState) Hash() string {
	return strconv.Itoa(int(c))
}

type chainAction int

func (c chainAction) Hash() string {
	if c == 0 {
		return "left"
	}
	return "right"
}

// chainEnv is a corridor of n cells, 0..n-1, terminal at both ends. Entering
// the right end pays 1. A negative start picks a random interior cell.
type chainEnv struct {
	n        int
	start    int
	discount float64
	// broken makes SampleTransition fail when leaving that cell. Zero
	// disables it since cell 0 is terminal.
	broken int
}

var _ Environment = &chainEnv{}

func newChainEnv(n, start int) *chainEnv {
	return &chainEnv{n: n, start: start, discount: 0.9}
}

func (c *chainEnv) States() []State {
	out := make([]State, c.n)
	for i := range out {
		out[i] = chainState(i)
	}
	return out
}

func (c *chainEnv) Actions() []Action {
	return []Action{chainAction(0), chainAction(1)}
}

func (c *chainEnv) StateIndex(s State) (int, error) {
	cs, ok := s.(chainState)
	if !ok || int(cs) < 0 || int(cs) >= c.n {
		return 0, fmt.Errorf("unknown state %s", s.Hash())
	}
	return int(cs), nil
}

func (c *chainEnv) ActionIndex(a Action) (int, error) {
	ca, ok := a.(chainAction)
	if !ok || ca < 0 || ca > 1 {
		return 0, fmt.Errorf("unknown action %s", a.Hash())
	}
	return int(ca), nil
}

func (c *chainEnv) InitialState(r *rand.Rand) (State, error) {
	if c.start >= 0 {
		return chainState(c.start), nil
	}
	return chainState(1 + r.Intn(c.n-2)), nil
}

func (c *chainEnv) SampleTransition(s State, a Action, _ *rand.Rand) (State, float64, error) {
	cur := int(s.(chainState))
	if c.broken > 0 && cur == c.broken {
		return nil, 0, errBrokenCell
	}
	next := cur - 1
	if a.(chainAction) == 1 {
		next = cur + 1
	}
	if next == c.n-1 {
		return chainState(next), 1, nil
	}
	return chainState(next), 0, nil
}

func (c *chainEnv) IsTerminal(s State) bool {
	cs := int(s.(chainState))
	return cs == 0 || cs == c.n-1
}

func (c *chainEnv) Discount() float64 {
	return c.discount
}

type chainEnvConstructor struct {
	n     int
	start int
}

func (c *chainEnvConstructor) NewEnvironment(_ int) Environment {
	return newChainEnv(c.n, c.start)
}

// fixedActionPolicy always picks the same action index.
type fixedActionPolicy struct {
	action int
}

var _ Policy = &fixedActionPolicy{}
var _ FixedPolicy = &fixedActionPolicy{}

func (f *fixedActionPolicy) ResetEpisode(_ *EpisodeContext)  {}
func (f *fixedActionPolicy) UpdateEpisode(_ *EpisodeContext) {}
func (f *fixedActionPolicy) Reset()                          {}

func (f *fixedActionPolicy) PickAction(_ *StepContext, _ int, _ *QTable) int {
	return f.action
}

func (f *fixedActionPolicy) Act(_ *StepContext, _ State) (Action, error) {
	return chainAction(f.action), nil
}

// uniformPolicy picks uniformly at random, both while training and rolling
// out.
type uniformPolicy struct{}

var _ Policy = &uniformPolicy{}
var _ FixedPolicy = &uniformPolicy{}

func (u *uniformPolicy) ResetEpisode(_ *EpisodeContext)  {}
func (u *uniformPolicy) UpdateEpisode(_ *EpisodeContext) {}
func (u *uniformPolicy) Reset()                          {}

func (u *uniformPolicy) PickAction(step *StepContext, _ int, q *QTable) int {
	_, actions := q.Dims()
	return step.Rand.Intn(actions)
}

func (u *uniformPolicy) Act(step *StepContext, _ State) (Action, error) {
	return chainAction(step.Rand.Intn(2)), nil
}

type uniformPolicyConstructor struct{}

func (u *uniformPolicyConstructor) NewPolicy() Policy {
	return &uniformPolicy{}
}
