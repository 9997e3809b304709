package core

import (
	"fmt"
)

// TrainConfig holds the hyperparameters of one training run.
type TrainConfig struct {
	// Episodes is the number of training episodes.
	Episodes int
	// MaxSteps caps the length of every episode. Hitting it truncates the
	// episode; it is not an error.
	MaxSteps     int
	LearningRate float64

	// EvalEvery is the number of completed episodes between checkpoints.
	// Zero disables checkpoints.
	EvalEvery    int
	EvalEpisodes int
	// EvalMaxSteps caps evaluation rollouts. Defaults to MaxSteps.
	EvalMaxSteps int
}

func (c *TrainConfig) Validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("%w: episodes must be positive, got %d", ErrConfiguration, c.Episodes)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrConfiguration, c.MaxSteps)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("%w: learning rate must lie in (0, 1], got %f", ErrConfiguration, c.LearningRate)
	}
	if c.EvalEvery < 0 {
		return fmt.Errorf("%w: eval every must not be negative, got %d", ErrConfiguration, c.EvalEvery)
	}
	if c.EvalEvery > 0 && c.EvalEpisodes <= 0 {
		return fmt.Errorf("%w: evaluation episodes must be positive when checkpoints are enabled, got %d", ErrConfiguration, c.EvalEpisodes)
	}
	if c.EvalMaxSteps < 0 {
		return fmt.Errorf("%w: evaluation max steps must not be negative, got %d", ErrConfiguration, c.EvalMaxSteps)
	}
	return nil
}

func (c *TrainConfig) evalMaxSteps() int {
	if c.EvalMaxSteps > 0 {
		return c.EvalMaxSteps
	}
	return c.MaxSteps
}

// Checkpoint is the evaluation of the greedy policy after Episode episodes.
type Checkpoint struct {
	Episode int
	Mean    float64
	StdDev  float64
}

// Statistics is the training progress record, one checkpoint per
// evaluation.
type Statistics struct {
	Checkpoints []Checkpoint
}

func NewStatistics() *Statistics {
	return &Statistics{
		Checkpoints: make([]Checkpoint, 0),
	}
}

func (s *Statistics) Add(c Checkpoint) {
	s.Checkpoints = append(s.Checkpoints, c)
}

func (s *Statistics) Len() int {
	return len(s.Checkpoints)
}

// Last returns the most recent checkpoint.
func (s *Statistics) Last() (Checkpoint, bool) {
	if len(s.Checkpoints) == 0 {
		return Checkpoint{}, false
	}
	return s.Checkpoints[len(s.Checkpoints)-1], true
}

type DataSet interface{}

// Analyzer inspects every training episode.
type Analyzer interface {
	Analyze(*EpisodeContext, *Trace)
	DataSet() DataSet
	Reset()
}

// CheckpointObserver is implemented by analyzers that also want the
// evaluation checkpoints.
type CheckpointObserver interface {
	ObserveCheckpoint(Checkpoint)
}

type AnalyzerConstructor interface {
	// new analyzer based on experiment name and run
	NewAnalyzer(string, int) Analyzer
}

// Comparator receives, for one run, the experiment names and the dataset
// each produced. A failed experiment contributes a nil dataset.
type Comparator interface {
	Compare([]string, []DataSet)
}

type ComparatorConstructor interface {
	NewComparator(int) Comparator
}

type Experiment struct {
	Name        string
	Environment Environment
	Policy      Policy
	// Seed of run r is Seed+r.
	Seed uint64
}

type Comparison struct {
	Experiments []*Experiment
	Analyzers   map[string]Analyzer
	Comparators map[string]Comparator
}

func NewComparison() *Comparison {
	return &Comparison{
		Analyzers:   make(map[string]Analyzer),
		Comparators: make(map[string]Comparator),
		Experiments: make([]*Experiment, 0),
	}
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison) AddAnalysis(name string, a Analyzer, cmp Comparator) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}

type ParallelExperiment struct {
	Name        string
	Environment EnvironmentConstructor
	Policy      PolicyConstructor
	Seed        uint64
}

type ParallelComparison struct {
	Experiments []*ParallelExperiment
	Analyzers   map[string]AnalyzerConstructor
	Comparators map[string]ComparatorConstructor
}

func NewParallelComparison() *ParallelComparison {
	return &ParallelComparison{
		Analyzers:   make(map[string]AnalyzerConstructor),
		Comparators: make(map[string]ComparatorConstructor),
		Experiments: make([]*ParallelExperiment, 0),
	}
}

func (c *ParallelComparison) AddExperiment(e *ParallelExperiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *ParallelComparison) AddAnalysis(name string, a AnalyzerConstructor, cmp ComparatorConstructor) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}
