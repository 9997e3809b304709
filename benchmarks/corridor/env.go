package corridor

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/zeu5/tabular-rl/core"
	"golang.org/x/exp/rand"
)

var (
	ErrUnknownState  = errors.New("unknown corridor state")
	ErrUnknownAction = errors.New("unknown corridor action")
)

// Position is a cell of the corridor, numbered from 1.
type Position int

func (p Position) Hash() string {
	return strconv.Itoa(int(p))
}

type Move string

func (m Move) Hash() string {
	return string(m)
}

const (
	Left  Move = "left"
	Right Move = "right"
)

type Config struct {
	// Length is the number of cells. Cells 1 and Length are terminal.
	Length int
	// Start is the starting cell. Zero picks a uniformly random
	// non-terminal cell every episode.
	Start       int
	RewardLeft  float64
	RewardRight float64
	Discount    float64
}

func DefaultConfig() Config {
	return Config{
		Length:      10,
		Start:       4,
		RewardLeft:  1.0,
		RewardRight: 10.0,
		Discount:    0.9,
	}
}

// Environment is a one dimensional corridor. Moves are deterministic and
// clamped at the ends. Entering cell 1 pays RewardLeft, entering cell Length
// pays RewardRight, everything else pays nothing.
type Environment struct {
	config  Config
	states  []core.State
	actions []core.Action
}

var _ core.Environment = &Environment{}

func NewEnvironment(config Config) (*Environment, error) {
	if config.Length < 3 {
		return nil, fmt.Errorf("%w: corridor needs at least 3 cells, got %d", core.ErrConfiguration, config.Length)
	}
	if config.Start < 0 || config.Start > config.Length {
		return nil, fmt.Errorf("%w: start cell %d outside corridor of length %d", core.ErrConfiguration, config.Start, config.Length)
	}
	if config.Discount < 0 || config.Discount >= 1 {
		return nil, fmt.Errorf("%w: discount must lie in [0, 1), got %f", core.ErrConfiguration, config.Discount)
	}
	states := make([]core.State, config.Length)
	for i := range states {
		states[i] = Position(i + 1)
	}
	return &Environment{
		config:  config,
		states:  states,
		actions: []core.Action{Left, Right},
	}, nil
}

func (e *Environment) Config() Config {
	return e.config
}

func (e *Environment) States() []core.State {
	return e.states
}

func (e *Environment) Actions() []core.Action {
	return e.actions
}

func (e *Environment) position(s core.State) (Position, error) {
	p, ok := s.(Position)
	if !ok || p < 1 || int(p) > e.config.Length {
		return 0, fmt.Errorf("%w: %s", ErrUnknownState, s.Hash())
	}
	return p, nil
}

func (e *Environment) StateIndex(s core.State) (int, error) {
	p, err := e.position(s)
	if err != nil {
		return 0, err
	}
	return int(p) - 1, nil
}

func (e *Environment) ActionIndex(a core.Action) (int, error) {
	switch a {
	case Left:
		return 0, nil
	case Right:
		return 1, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownAction, a.Hash())
}

func (e *Environment) InitialState(r *rand.Rand) (core.State, error) {
	if e.config.Start > 0 {
		return Position(e.config.Start), nil
	}
	return Position(2 + r.Intn(e.config.Length-2)), nil
}

func (e *Environment) SampleTransition(s core.State, a core.Action, _ *rand.Rand) (core.State, float64, error) {
	p, err := e.position(s)
	if err != nil {
		return nil, 0, err
	}
	next := p
	switch a {
	case Left:
		next--
	case Right:
		next++
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownAction, a.Hash())
	}
	if next < 1 {
		next = 1
	}
	if int(next) > e.config.Length {
		next = Position(e.config.Length)
	}

	reward := float64(0)
	switch int(next) {
	case 1:
		reward = e.config.RewardLeft
	case e.config.Length:
		reward = e.config.RewardRight
	}
	return next, reward, nil
}

func (e *Environment) IsTerminal(s core.State) bool {
	p, err := e.position(s)
	if err != nil {
		return false
	}
	return p == 1 || int(p) == e.config.Length
}

func (e *Environment) Discount() float64 {
	return e.config.Discount
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
