package core

// Step is one transition of an episode.
type Step struct {
	State     State
	Action    Action
	Reward    float64
	NextState State
}

// Trace is the trajectory of a single training episode. The trainer only
// builds one when analyzers are registered and drops it once they have run.
type Trace struct {
	steps     []*Step
	truncated bool
}

func NewTrace() *Trace {
	return &Trace{
		steps: make([]*Step, 0),
	}
}

func (t *Trace) AddStep(s *Step) {
	t.steps = append(t.steps, s)
}

func (t *Trace) Step(i int) *Step {
	return t.steps[i]
}

func (t *Trace) Len() int {
	return len(t.steps)
}

func (t *Trace) Last() *Step {
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[len(t.steps)-1]
}

// Truncated reports whether the episode hit the step cap before reaching a
// terminal state.
func (t *Trace) Truncated() bool {
	return t.truncated
}

// Return is the discounted sum of rewards along the trace.
func (t *Trace) Return(discount float64) float64 {
	total := float64(0)
	factor := float64(1)
	for _, s := range t.steps {
		total += factor * s.Reward
		factor *= discount
	}
	return total
}
