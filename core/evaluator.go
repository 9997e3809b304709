package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

type EvalConfig struct {
	Episodes int
	MaxSteps int
	Discount float64
}

func (c *EvalConfig) Validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("%w: evaluation episodes must be positive, got %d", ErrConfiguration, c.Episodes)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: evaluation max steps must be positive, got %d", ErrConfiguration, c.MaxSteps)
	}
	if c.Discount < 0 || c.Discount >= 1 {
		return fmt.Errorf("%w: discount must lie in [0, 1), got %f", ErrConfiguration, c.Discount)
	}
	return nil
}

// EvalResult summarises the discounted returns of independent rollouts.
// StdDev is the population standard deviation.
type EvalResult struct {
	Mean    float64
	StdDev  float64
	Returns []float64
}

func newEvalResult(returns []float64) *EvalResult {
	mean, std := stat.PopMeanStdDev(returns, nil)
	return &EvalResult{
		Mean:    mean,
		StdDev:  std,
		Returns: returns,
	}
}

// Evaluate rolls out the policy for config.Episodes episodes, drawing every
// random number from r in order. The first error abandons the remaining
// rollouts.
func Evaluate(ctx context.Context, policy FixedPolicy, env Environment, config *EvalConfig, r *rand.Rand) (*EvalResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	returns := make([]float64, config.Episodes)
	for episode := 0; episode < config.Episodes; episode++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		default:
		}
		eCtx := NewEpisodeContext(ctx, r)
		eCtx.Episode = episode
		eCtx.Horizon = config.MaxSteps

		total, err := rollout(eCtx, policy, env, config.Discount)
		if err != nil {
			return nil, err
		}
		returns[episode] = total
	}
	return newEvalResult(returns), nil
}

func rollout(eCtx *EpisodeContext, policy FixedPolicy, env Environment, discount float64) (float64, error) {
	state, err := env.InitialState(eCtx.Rand)
	if err != nil {
		return 0, fmt.Errorf("%w: initial state: %w", ErrEnvironment, err)
	}
	total := float64(0)
	for step := 0; step < eCtx.Horizon; step++ {
		if env.IsTerminal(state) {
			break
		}
		sCtx := &StepContext{Step: step, EpisodeContext: eCtx}
		action, err := policy.Act(sCtx, state)
		if err != nil {
			if !errors.Is(err, ErrEvaluation) {
				err = fmt.Errorf("%w: %w", ErrEvaluation, err)
			}
			return 0, err
		}
		nextState, reward, err := env.SampleTransition(state, action, eCtx.Rand)
		if err != nil {
			return 0, fmt.Errorf("%w: state %s, action %s: %w", ErrEnvironment, state.Hash(), action.Hash(), err)
		}
		total += math.Pow(discount, float64(step)) * reward
		state = nextState
	}
	return total, nil
}

type evalWork struct {
	episode int
}

type evalOutcome struct {
	episode int
	total   float64
	err     error
}

// EvaluateParallel spreads the rollouts over a pool of workers. Rollout i
// draws from its own source seeded with seed+i, so the result does not
// depend on parallelism. The policy and the environment are shared and must
// not be mutated by rollouts.
func EvaluateParallel(ctx context.Context, policy FixedPolicy, env Environment, config *EvalConfig, seed uint64, parallelism int) (*EvalResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if parallelism <= 0 {
		return nil, fmt.Errorf("%w: parallelism must be positive, got %d", ErrConfiguration, parallelism)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workCh := make(chan evalWork, parallelism)
	outCh := make(chan evalOutcome, parallelism)
	wg := new(sync.WaitGroup)

	for i := 0; i < parallelism; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				eCtx := NewEpisodeContext(ctx, rand.New(rand.NewSource(seed+uint64(work.episode))))
				eCtx.Episode = work.episode
				eCtx.Horizon = config.MaxSteps

				total, err := rollout(eCtx, policy, env, config.Discount)
				outCh <- evalOutcome{episode: work.episode, total: total, err: err}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for episode := 0; episode < config.Episodes; episode++ {
			select {
			case <-ctx.Done():
				return
			case workCh <- evalWork{episode: episode}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	returns := make([]float64, config.Episodes)
	done := 0
	var firstErr error
	firstErrEpisode := config.Episodes
	for out := range outCh {
		if out.err != nil {
			if out.episode < firstErrEpisode {
				firstErr = out.err
				firstErrEpisode = out.episode
			}
			cancel()
			continue
		}
		returns[out.episode] = out.total
		done++
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if done != config.Episodes {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	}
	return newEvalResult(returns), nil
}
