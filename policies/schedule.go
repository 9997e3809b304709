package policies

import (
	"fmt"
	"math"

	"github.com/zeu5/tabular-rl/core"
)

// Schedule gives the exploration rate to use in an episode. Episodes are
// numbered from 1.
type Schedule interface {
	Value(int) float64
	// Range returns the smallest and largest value the schedule can produce.
	Range() (float64, float64)
}

type ConstantSchedule float64

var _ Schedule = ConstantSchedule(0)

func (c ConstantSchedule) Value(_ int) float64 {
	return float64(c)
}

func (c ConstantSchedule) Range() (float64, float64) {
	return float64(c), float64(c)
}

// LinearSchedule moves from Start to End over Episodes episodes and stays at
// End afterwards.
type LinearSchedule struct {
	Start    float64
	End      float64
	Episodes int
}

var _ Schedule = &LinearSchedule{}

func (l *LinearSchedule) Value(episode int) float64 {
	if l.Episodes <= 1 || episode >= l.Episodes {
		return l.End
	}
	if episode <= 1 {
		return l.Start
	}
	frac := float64(episode-1) / float64(l.Episodes-1)
	return l.Start + frac*(l.End-l.Start)
}

func (l *LinearSchedule) Range() (float64, float64) {
	return math.Min(l.Start, l.End), math.Max(l.Start, l.End)
}

// ExponentialSchedule multiplies Start by Decay every episode, never going
// below Min.
type ExponentialSchedule struct {
	Start float64
	Min   float64
	Decay float64
}

var _ Schedule = &ExponentialSchedule{}

func (e *ExponentialSchedule) Value(episode int) float64 {
	if episode < 1 {
		episode = 1
	}
	return math.Max(e.Min, e.Start*math.Pow(e.Decay, float64(episode-1)))
}

func (e *ExponentialSchedule) Range() (float64, float64) {
	return math.Min(e.Min, e.Start), math.Max(e.Min, e.Start)
}

// ValidateSchedule checks that every value the schedule can produce is a
// probability.
func ValidateSchedule(s Schedule) error {
	if s == nil {
		return fmt.Errorf("%w: missing epsilon schedule", core.ErrConfiguration)
	}
	if e, ok := s.(*ExponentialSchedule); ok && (e.Decay <= 0 || e.Decay > 1) {
		return fmt.Errorf("%w: epsilon decay must lie in (0, 1], got %f", core.ErrConfiguration, e.Decay)
	}
	lo, hi := s.Range()
	if err := validateEpsilon(lo); err != nil {
		return err
	}
	return validateEpsilon(hi)
}

func validateEpsilon(epsilon float64) error {
	if math.IsNaN(epsilon) || epsilon < 0 || epsilon > 1 {
		return fmt.Errorf("%w: epsilon must lie in [0, 1], got %f", core.ErrConfiguration, epsilon)
	}
	return nil
}
