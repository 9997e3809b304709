package gridworld

import (
	"errors"
	"fmt"

	"github.com/zeu5/tabular-rl/core"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

var (
	ErrUnknownState  = errors.New("unknown grid cell")
	ErrUnknownAction = errors.New("unknown grid move")
)

type Cell struct {
	Row int
	Col int
}

func (c Cell) Hash() string {
	return fmt.Sprintf("%d_%d", c.Row, c.Col)
}

type Move int

const (
	Up Move = iota
	Right
	Down
	Left
)

func (m Move) Hash() string {
	switch m {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	default:
		return "left"
	}
}

func (m Move) delta() (int, int) {
	switch m {
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	default:
		return 0, -1
	}
}

// sideways returns the two moves perpendicular to m.
func (m Move) sideways() (Move, Move) {
	return (m + 1) % 4, (m + 3) % 4
}

type Config struct {
	Rows  int
	Cols  int
	Start Cell
	Goal  Cell
	Pits  []Cell

	GoalReward  float64
	PitReward   float64
	StepPenalty float64
	// Slip is the probability that a move goes sideways instead, split
	// evenly between the two perpendicular directions.
	Slip     float64
	Discount float64
}

func DefaultConfig() Config {
	return Config{
		Rows:        4,
		Cols:        4,
		Start:       Cell{Row: 3, Col: 0},
		Goal:        Cell{Row: 0, Col: 3},
		Pits:        []Cell{{Row: 1, Col: 1}, {Row: 2, Col: 3}},
		GoalReward:  1.0,
		PitReward:   -1.0,
		StepPenalty: 0.04,
		Slip:        0.2,
		Discount:    0.95,
	}
}

// Environment is a grid with a goal cell and pit cells, both terminal.
// Moves into a wall leave the agent in place.
type Environment struct {
	config  Config
	states  []core.State
	actions []core.Action
	pits    map[Cell]bool
}

var _ core.Environment = &Environment{}

func NewEnvironment(config Config) (*Environment, error) {
	if config.Rows <= 0 || config.Cols <= 0 {
		return nil, fmt.Errorf("%w: grid must have positive dimensions, got %dx%d", core.ErrConfiguration, config.Rows, config.Cols)
	}
	if config.Slip < 0 || config.Slip > 1 {
		return nil, fmt.Errorf("%w: slip must lie in [0, 1], got %f", core.ErrConfiguration, config.Slip)
	}
	if config.Discount < 0 || config.Discount >= 1 {
		return nil, fmt.Errorf("%w: discount must lie in [0, 1), got %f", core.ErrConfiguration, config.Discount)
	}
	e := &Environment{
		config:  config,
		states:  make([]core.State, 0, config.Rows*config.Cols),
		actions: []core.Action{Up, Right, Down, Left},
		pits:    make(map[Cell]bool),
	}
	for _, c := range append([]Cell{config.Start, config.Goal}, config.Pits...) {
		if !e.inside(c) {
			return nil, fmt.Errorf("%w: cell %s outside the grid", core.ErrConfiguration, c.Hash())
		}
	}
	for _, p := range config.Pits {
		e.pits[p] = true
	}
	for r := 0; r < config.Rows; r++ {
		for c := 0; c < config.Cols; c++ {
			e.states = append(e.states, Cell{Row: r, Col: c})
		}
	}
	return e, nil
}

func (e *Environment) Config() Config {
	return e.config
}

func (e *Environment) inside(c Cell) bool {
	return c.Row >= 0 && c.Row < e.config.Rows && c.Col >= 0 && c.Col < e.config.Cols
}

func (e *Environment) cell(s core.State) (Cell, error) {
	c, ok := s.(Cell)
	if !ok || !e.inside(c) {
		return Cell{}, fmt.Errorf("%w: %s", ErrUnknownState, s.Hash())
	}
	return c, nil
}

func (e *Environment) States() []core.State {
	return e.states
}

func (e *Environment) Actions() []core.Action {
	return e.actions
}

func (e *Environment) StateIndex(s core.State) (int, error) {
	c, err := e.cell(s)
	if err != nil {
		return 0, err
	}
	return c.Row*e.config.Cols + c.Col, nil
}

func (e *Environment) ActionIndex(a core.Action) (int, error) {
	m, ok := a.(Move)
	if !ok || m < Up || m > Left {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAction, a.Hash())
	}
	return int(m), nil
}

func (e *Environment) InitialState(_ *rand.Rand) (core.State, error) {
	return e.config.Start, nil
}

func (e *Environment) SampleTransition(s core.State, a core.Action, r *rand.Rand) (core.State, float64, error) {
	c, err := e.cell(s)
	if err != nil {
		return nil, 0, err
	}
	m, ok := a.(Move)
	if !ok || m < Up || m > Left {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownAction, a.Hash())
	}

	if e.config.Slip > 0 {
		left, right := m.sideways()
		moves := []Move{m, left, right}
		weights := []float64{1 - e.config.Slip, e.config.Slip / 2, e.config.Slip / 2}
		i, ok := sampleuv.NewWeighted(weights, r).Take()
		if ok {
			m = moves[i]
		}
	}

	dr, dc := m.delta()
	next := Cell{Row: c.Row + dr, Col: c.Col + dc}
	if !e.inside(next) {
		next = c
	}

	reward := -e.config.StepPenalty
	switch {
	case next == e.config.Goal:
		reward += e.config.GoalReward
	case e.pits[next]:
		reward += e.config.PitReward
	}
	return next, reward, nil
}

func (e *Environment) IsTerminal(s core.State) bool {
	c, err := e.cell(s)
	if err != nil {
		return false
	}
	return c == e.config.Goal || e.pits[c]
}

func (e *Environment) Discount() float64 {
	return e.config.Discount
}
