package policies

import (
	"fmt"
	"math"

	"github.com/zeu5/tabular-rl/core"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftmaxPolicy explores by sampling actions from the Boltzmann
// distribution over the action values, with a temperature
type SoftmaxPolicy struct {
	Temperature float64
}

var _ core.Policy = &SoftmaxPolicy{}
var _ core.Validator = &SoftmaxPolicy{}

func NewSoftmaxPolicy(temperature float64) (*SoftmaxPolicy, error) {
	s := &SoftmaxPolicy{Temperature: temperature}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SoftmaxPolicy) Validate() error {
	if !(s.Temperature > 0) || math.IsInf(s.Temperature, 0) {
		return fmt.Errorf("%w: softmax temperature must be positive and finite, got %f", core.ErrConfiguration, s.Temperature)
	}
	return nil
}

func (s *SoftmaxPolicy) Reset() {}

func (s *SoftmaxPolicy) ResetEpisode(_ *core.EpisodeContext) {}

func (s *SoftmaxPolicy) UpdateEpisode(_ *core.EpisodeContext) {}

func (s *SoftmaxPolicy) PickAction(step *core.StepContext, state int, q *core.QTable) int {
	vals := q.Row(state)
	_, largestValue := q.Max(state)

	// Normalizing
	sum := float64(0)
	for i := range vals {
		vals[i] = math.Exp((vals[i] - largestValue) / s.Temperature)
		sum += vals[i]
	}
	for i := range vals {
		vals[i] = vals[i] / sum
	}

	i, ok := sampleuv.NewWeighted(vals, step.Rand).Take()
	if !ok {
		a, _ := q.Max(state)
		return a
	}
	return i
}

type SoftmaxPolicyConstructor struct {
	temperature float64
}

var _ core.PolicyConstructor = &SoftmaxPolicyConstructor{}

func NewSoftmaxPolicyConstructor(temperature float64) *SoftmaxPolicyConstructor {
	return &SoftmaxPolicyConstructor{
		temperature: temperature,
	}
}

func (s *SoftmaxPolicyConstructor) NewPolicy() core.Policy {
	return &SoftmaxPolicy{Temperature: s.temperature}
}
