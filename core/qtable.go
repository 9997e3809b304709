package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// QTable holds the action value estimates of a finite MDP, indexed by
// [state, action]. Entries start at zero and the dimensions never change.
type QTable struct {
	values *mat.Dense
}

func NewQTable(states, actions int) (*QTable, error) {
	if states <= 0 || actions <= 0 {
		return nil, fmt.Errorf("%w: q-table needs at least one state and one action, got %dx%d", ErrConfiguration, states, actions)
	}
	return &QTable{
		values: mat.NewDense(states, actions, nil),
	}, nil
}

// Dims returns the number of states and actions.
func (q *QTable) Dims() (int, int) {
	return q.values.Dims()
}

func (q *QTable) Get(state, action int) float64 {
	return q.values.At(state, action)
}

func (q *QTable) Set(state, action int, val float64) {
	q.values.Set(state, action, val)
}

// Row returns a copy of the action values of the state.
func (q *QTable) Row(state int) []float64 {
	return mat.Row(nil, state, q.values)
}

// Max returns the greedy action of the state and its value. Ties go to the
// lowest action index.
func (q *QTable) Max(state int) (int, float64) {
	row := q.values.RawRowView(state)
	i := floats.MaxIdx(row)
	return i, row[i]
}

// Update applies one Q-learning step to [state, action] and returns the new
// estimate. A transition into a terminal state does not bootstrap.
func (q *QTable) Update(state, action int, reward float64, next int, terminal bool, learningRate, discount float64) float64 {
	target := reward
	if !terminal {
		_, nextVal := q.Max(next)
		target += discount * nextVal
	}
	curVal := q.values.At(state, action)
	newVal := curVal + learningRate*(target-curVal)
	q.values.Set(state, action, newVal)
	return newVal
}

func (q *QTable) Clone() *QTable {
	return &QTable{
		values: mat.DenseCopyOf(q.values),
	}
}

// Finite reports whether every entry is a finite number.
func (q *QTable) Finite() bool {
	rows, _ := q.values.Dims()
	for i := 0; i < rows; i++ {
		for _, v := range q.values.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
