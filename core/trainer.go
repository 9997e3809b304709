package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

type TrainerStatus int

const (
	Idle TrainerStatus = iota
	Running
	Done
)

func (s TrainerStatus) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	default:
		return "Done"
	}
}

var ErrTrainerUsed = errors.New("trainer has already run")

// TrainResult is what a finished training run hands back.
type TrainResult struct {
	Policy     *GreedyPolicy
	Statistics *Statistics

	CompletedEpisodes int
	TruncatedEpisodes int
	TotalTimeSteps    int

	Datasets map[string]DataSet
}

// Trainer runs tabular Q-learning against an Environment. A Trainer is
// single use and not safe for concurrent use: every episode mutates the
// table in place.
type Trainer struct {
	name   string
	run    int
	config TrainConfig

	env      Environment
	policy   Policy
	table    *QTable
	actions  []Action
	discount float64

	rand     *rand.Rand
	evalRand *rand.Rand

	analyzers map[string]Analyzer
	writer    io.Writer
	logger    logrus.FieldLogger

	status TrainerStatus
}

type TrainerOption func(*Trainer)

func WithName(name string) TrainerOption {
	return func(t *Trainer) {
		t.name = name
	}
}

func WithRun(run int) TrainerOption {
	return func(t *Trainer) {
		t.run = run
	}
}

// WithWriter sets where the per episode progress line goes.
func WithWriter(w io.Writer) TrainerOption {
	return func(t *Trainer) {
		t.writer = w
	}
}

func WithLogger(l logrus.FieldLogger) TrainerOption {
	return func(t *Trainer) {
		t.logger = l
	}
}

func WithAnalyzer(name string, a Analyzer) TrainerOption {
	return func(t *Trainer) {
		t.analyzers[name] = a
	}
}

// NewTrainer validates the configuration and allocates a zeroed table. All
// configuration errors surface here.
func NewTrainer(env Environment, policy Policy, config *TrainConfig, r *rand.Rand, opts ...TrainerOption) (*Trainer, error) {
	if env == nil || policy == nil || config == nil || r == nil {
		return nil, fmt.Errorf("%w: environment, policy, config and random source are required", ErrConfiguration)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if v, ok := policy.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	discount := env.Discount()
	if discount < 0 || discount >= 1 {
		return nil, fmt.Errorf("%w: discount must lie in [0, 1), got %f", ErrConfiguration, discount)
	}

	table, err := NewQTable(len(env.States()), len(env.Actions()))
	if err != nil {
		return nil, err
	}
	envActions := env.Actions()
	actions := make([]Action, len(envActions))
	for _, a := range envActions {
		i, err := env.ActionIndex(a)
		if err != nil || i < 0 || i >= len(actions) {
			return nil, fmt.Errorf("%w: action %s has no valid index", ErrConfiguration, a.Hash())
		}
		actions[i] = a
	}

	silent := logrus.New()
	silent.SetOutput(io.Discard)

	t := &Trainer{
		name:     "qlearning",
		config:   *config,
		env:      env,
		policy:   policy,
		table:    table,
		actions:  actions,
		discount: discount,
		rand:     r,
		// Checkpoints draw from their own stream so that they never shift
		// the training trajectory.
		evalRand:  rand.New(rand.NewSource(r.Uint64())),
		analyzers: make(map[string]Analyzer),
		writer:    io.Discard,
		logger:    silent,
		status:    Idle,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

func (t *Trainer) Status() TrainerStatus {
	return t.status
}

// Table exposes the live table. It must not be written to while Train runs.
func (t *Trainer) Table() *QTable {
	return t.table
}

// Train runs config.Episodes episodes and returns the greedy policy of the
// final table. An environment error aborts the run; the table is then left
// as it was and must not be used.
func (t *Trainer) Train(ctx context.Context) (*TrainResult, error) {
	if t.status != Idle {
		return nil, ErrTrainerUsed
	}
	t.status = Running
	defer func() { t.status = Done }()

	logger := t.logger.WithFields(logrus.Fields{"experiment": t.name, "run": t.run})

	t.policy.Reset()
	for _, a := range t.analyzers {
		a.Reset()
	}

	result := &TrainResult{
		Statistics: NewStatistics(),
		Datasets:   make(map[string]DataSet),
	}

	for episode := 1; episode <= t.config.Episodes; episode++ {
		select {
		case <-ctx.Done():
			logger.WithField("episode", episode).Warn("training cancelled")
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		default:
		}

		eCtx := NewEpisodeContext(ctx, t.rand)
		eCtx.Run = t.run
		eCtx.Episode = episode
		eCtx.Horizon = t.config.MaxSteps
		if len(t.analyzers) > 0 {
			eCtx.Trace = NewTrace()
		}

		steps, truncated, err := t.runEpisode(eCtx)
		if err != nil {
			logger.WithField("episode", episode).WithError(err).Error("training aborted")
			return nil, fmt.Errorf("episode %d: %w", episode, err)
		}
		result.CompletedEpisodes++
		result.TotalTimeSteps += steps
		if truncated {
			result.TruncatedEpisodes++
		}

		fmt.Fprintf(
			t.writer,
			"Experiment: %s, Run %d, Episode %d/%d, Timesteps: %d, Truncated: %d\n",
			t.name, t.run, episode, t.config.Episodes, result.TotalTimeSteps, result.TruncatedEpisodes,
		)

		for _, a := range t.analyzers {
			a.Analyze(eCtx, eCtx.Trace)
		}
		eCtx.Trace = nil

		if t.config.EvalEvery > 0 && episode%t.config.EvalEvery == 0 {
			checkpoint, err := t.checkpoint(ctx, episode)
			if err != nil {
				logger.WithField("episode", episode).WithError(err).Error("checkpoint failed")
				return nil, fmt.Errorf("checkpoint at episode %d: %w", episode, err)
			}
			result.Statistics.Add(checkpoint)
			for _, a := range t.analyzers {
				if o, ok := a.(CheckpointObserver); ok {
					o.ObserveCheckpoint(checkpoint)
				}
			}
			logger.WithFields(logrus.Fields{
				"episode": episode,
				"mean":    checkpoint.Mean,
				"stddev":  checkpoint.StdDev,
			}).Info("checkpoint")
		}
	}

	policy, err := NewGreedyPolicy(t.env, t.table)
	if err != nil {
		return nil, err
	}
	result.Policy = policy
	for name, a := range t.analyzers {
		result.Datasets[name] = a.DataSet()
	}
	logger.WithFields(logrus.Fields{
		"episodes":  result.CompletedEpisodes,
		"timesteps": result.TotalTimeSteps,
		"truncated": result.TruncatedEpisodes,
	}).Info("training finished")
	return result, nil
}

// runEpisode returns the number of steps taken and whether the step cap cut
// the episode short.
func (t *Trainer) runEpisode(eCtx *EpisodeContext) (int, bool, error) {
	t.policy.ResetEpisode(eCtx)

	state, err := t.env.InitialState(eCtx.Rand)
	if err != nil {
		return 0, false, fmt.Errorf("%w: initial state: %w", ErrEnvironment, err)
	}
	stateIdx, err := t.env.StateIndex(state)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrEnvironment, err)
	}

	steps := 0
	for step := 0; step < eCtx.Horizon; step++ {
		if t.env.IsTerminal(state) {
			break
		}
		sCtx := &StepContext{Step: step, EpisodeContext: eCtx}
		actionIdx := t.policy.PickAction(sCtx, stateIdx, t.table)
		if actionIdx < 0 || actionIdx >= len(t.actions) {
			return steps, false, fmt.Errorf("%w: policy picked action index %d out of %d", ErrConfiguration, actionIdx, len(t.actions))
		}
		action := t.actions[actionIdx]

		nextState, reward, err := t.env.SampleTransition(state, action, eCtx.Rand)
		if err != nil {
			return steps, false, fmt.Errorf("%w: state %s, action %s: %w", ErrEnvironment, state.Hash(), action.Hash(), err)
		}
		nextIdx, err := t.env.StateIndex(nextState)
		if err != nil {
			return steps, false, fmt.Errorf("%w: %w", ErrEnvironment, err)
		}

		t.table.Update(stateIdx, actionIdx, reward, nextIdx, t.env.IsTerminal(nextState), t.config.LearningRate, t.discount)
		if eCtx.Trace != nil {
			eCtx.Trace.AddStep(&Step{
				State:     state,
				Action:    action,
				Reward:    reward,
				NextState: nextState,
			})
		}
		state, stateIdx = nextState, nextIdx
		steps++
	}
	truncated := !t.env.IsTerminal(state)
	if eCtx.Trace != nil {
		eCtx.Trace.truncated = truncated
	}
	t.policy.UpdateEpisode(eCtx)
	return steps, truncated, nil
}

func (t *Trainer) checkpoint(ctx context.Context, episode int) (Checkpoint, error) {
	snapshot, err := NewGreedyPolicy(t.env, t.table)
	if err != nil {
		return Checkpoint{}, err
	}
	res, err := Evaluate(ctx, snapshot, t.env, &EvalConfig{
		Episodes: t.config.EvalEpisodes,
		MaxSteps: t.config.evalMaxSteps(),
		Discount: t.discount,
	}, t.evalRand)
	if err != nil {
		return Checkpoint{}, err
	}
	return Checkpoint{Episode: episode, Mean: res.Mean, StdDev: res.StdDev}, nil
}
