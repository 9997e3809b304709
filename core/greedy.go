package core

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// GreedyPolicy answers "best action" and "value" queries over a frozen copy
// of a QTable. It is safe for concurrent use since nothing mutates it after
// construction.
type GreedyPolicy struct {
	states     []string
	actions    []Action
	stateIndex map[string]int
	table      *QTable
}

var _ FixedPolicy = &GreedyPolicy{}

// NewGreedyPolicy freezes a copy of the table. The state and action order of
// the environment must match the table dimensions.
func NewGreedyPolicy(env Environment, q *QTable) (*GreedyPolicy, error) {
	states := env.States()
	actions := env.Actions()
	rows, cols := q.Dims()
	if rows != len(states) || cols != len(actions) {
		return nil, fmt.Errorf("%w: table is %dx%d but environment has %d states and %d actions",
			ErrConfiguration, rows, cols, len(states), len(actions))
	}

	p := &GreedyPolicy{
		states:     make([]string, len(states)),
		actions:    make([]Action, len(actions)),
		stateIndex: make(map[string]int, len(states)),
		table:      q.Clone(),
	}
	for _, s := range states {
		i, err := env.StateIndex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		p.states[i] = s.Hash()
		p.stateIndex[s.Hash()] = i
	}
	for _, a := range actions {
		i, err := env.ActionIndex(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		p.actions[i] = a
	}
	return p, nil
}

func (g *GreedyPolicy) index(state State) (int, error) {
	i, ok := g.stateIndex[state.Hash()]
	if !ok {
		return 0, fmt.Errorf("%w: unknown state %q", ErrEvaluation, state.Hash())
	}
	return i, nil
}

// Action returns argmax_a Q[state, a].
func (g *GreedyPolicy) Action(state State) (Action, error) {
	i, err := g.index(state)
	if err != nil {
		return nil, err
	}
	a, _ := g.table.Max(i)
	return g.actions[a], nil
}

// Value returns max_a Q[state, a].
func (g *GreedyPolicy) Value(state State) (float64, error) {
	i, err := g.index(state)
	if err != nil {
		return 0, err
	}
	_, v := g.table.Max(i)
	return v, nil
}

// QValues returns a copy of the action values of the state, in action order.
func (g *GreedyPolicy) QValues(state State) ([]float64, error) {
	i, err := g.index(state)
	if err != nil {
		return nil, err
	}
	return g.table.Row(i), nil
}

func (g *GreedyPolicy) Act(_ *StepContext, state State) (Action, error) {
	return g.Action(state)
}

// States returns the state hashes in index order.
func (g *GreedyPolicy) States() []string {
	out := make([]string, len(g.states))
	copy(out, g.states)
	return out
}

func (g *GreedyPolicy) Actions() []Action {
	out := make([]Action, len(g.actions))
	copy(out, g.actions)
	return out
}

type policyHeader struct {
	Actions []string `json:"actions"`
}

type policyEntry struct {
	State   string             `json:"state"`
	Entries map[string]float64 `json:"entries"`
}

// Record writes the policy as JSON lines: a header carrying the action order
// followed by one line per state.
func (g *GreedyPolicy) Record(path string) error {
	bs := new(bytes.Buffer)
	enc := json.NewEncoder(bs)

	header := policyHeader{Actions: make([]string, len(g.actions))}
	for i, a := range g.actions {
		header.Actions[i] = a.Hash()
	}
	if err := enc.Encode(header); err != nil {
		return fmt.Errorf("error encoding policy header: %s", err)
	}

	for i, state := range g.states {
		entry := policyEntry{State: state, Entries: make(map[string]float64, len(g.actions))}
		for j, a := range header.Actions {
			entry.Entries[a] = g.table.Get(i, j)
		}
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("error encoding state %s: %s", state, err)
		}
	}
	return os.WriteFile(path, bs.Bytes(), 0644)
}

// ReadGreedyPolicy loads a policy written by Record. States and actions come
// back as NamedState and NamedAction.
func ReadGreedyPolicy(path string) (*GreedyPolicy, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %s", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return nil, fmt.Errorf("error reading file contents: missing header")
	}
	header := policyHeader{}
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		return nil, fmt.Errorf("error reading file contents: %s", err)
	}

	entries := make([]policyEntry, 0)
	for scanner.Scan() {
		entry := policyEntry{}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("error reading file contents: %s", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file contents: %s", err)
	}

	table, err := NewQTable(len(entries), len(header.Actions))
	if err != nil {
		return nil, err
	}
	p := &GreedyPolicy{
		states:     make([]string, len(entries)),
		actions:    make([]Action, len(header.Actions)),
		stateIndex: make(map[string]int, len(entries)),
		table:      table,
	}
	for j, a := range header.Actions {
		p.actions[j] = NamedAction(a)
	}
	for i, entry := range entries {
		p.states[i] = entry.State
		p.stateIndex[entry.State] = i
		for j, a := range header.Actions {
			table.Set(i, j, entry.Entries[a])
		}
	}
	return p, nil
}
