package core

import (
	"context"

	"golang.org/x/exp/rand"
)

// Environment is a finite MDP. Implementations must not keep mutable episode
// state: all randomness comes from the source passed in, which lets the same
// environment back concurrent evaluation rollouts.
type Environment interface {
	States() []State
	Actions() []Action
	// StateIndex maps a state to its dense index in [0, len(States())).
	StateIndex(State) (int, error)
	// ActionIndex maps an action to its dense index in [0, len(Actions())).
	ActionIndex(Action) (int, error)
	InitialState(*rand.Rand) (State, error)
	// SampleTransition returns the next state and the reward for taking the
	// action in the state.
	SampleTransition(State, Action, *rand.Rand) (State, float64, error)
	IsTerminal(State) bool
	// Discount is in [0, 1).
	Discount() float64
}

type State interface {
	Hash() string
}

type Action interface {
	Hash() string
}

// NamedAction is an action identified only by its hash. Used when a policy is
// loaded back from disk without its environment.
type NamedAction string

func (n NamedAction) Hash() string {
	return string(n)
}

// NamedState is the state counterpart of NamedAction.
type NamedState string

func (n NamedState) Hash() string {
	return string(n)
}

type EpisodeContext struct {
	Context context.Context
	Episode int
	Horizon int
	Run     int
	// Rand is the source the episode draws from.
	Rand *rand.Rand

	Trace *Trace
}

func NewEpisodeContext(ctx context.Context, r *rand.Rand) *EpisodeContext {
	return &EpisodeContext{
		Context: ctx,
		Rand:    r,
	}
}

type StepContext struct {
	Step int
	*EpisodeContext
}

type EnvironmentConstructor interface {
	// NewEnvironment creates a new environment with the given instance number.
	NewEnvironment(int) Environment
}
