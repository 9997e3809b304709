package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gosuri/uilive"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

// ComparisonConfig is shared by every experiment of a comparison.
type ComparisonConfig struct {
	Train  TrainConfig
	Logger logrus.FieldLogger
	Writer io.Writer
}

func (c *ComparisonConfig) options(name string, run int) []TrainerOption {
	opts := []TrainerOption{WithName(name), WithRun(run)}
	if c.Logger != nil {
		opts = append(opts, WithLogger(c.Logger))
	}
	if c.Writer != nil {
		opts = append(opts, WithWriter(c.Writer))
	}
	return opts
}

// ComparisonResult holds, for every run, the training result of each
// experiment. Failed experiments are absent from their run's map.
type ComparisonResult struct {
	Runs []map[string]*TrainResult
}

func newComparisonResult(runs int) *ComparisonResult {
	out := &ComparisonResult{Runs: make([]map[string]*TrainResult, runs)}
	for i := range out.Runs {
		out.Runs[i] = make(map[string]*TrainResult)
	}
	return out
}

func (e *Experiment) run(ctx context.Context, run int, analyzers map[string]Analyzer, config *ComparisonConfig) (*TrainResult, error) {
	opts := config.options(e.Name, run)
	for name, a := range analyzers {
		opts = append(opts, WithAnalyzer(name, a))
	}
	trainer, err := NewTrainer(e.Environment, e.Policy, &config.Train, rand.New(rand.NewSource(e.Seed+uint64(run))), opts...)
	if err != nil {
		return nil, err
	}
	return trainer.Train(ctx)
}

// Run trains every experiment runs times, sequentially, and hands the
// datasets of each run to the comparators. Only cancellation and
// configuration errors stop it; a failing experiment is logged and
// contributes nil datasets.
func (c *Comparison) Run(ctx context.Context, runs int, config *ComparisonConfig) (*ComparisonResult, error) {
	out := newComparisonResult(runs)
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return out, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		default:
		}

		names := make([]string, 0, len(c.Experiments))
		results := make([]*TrainResult, 0, len(c.Experiments))
		for _, e := range c.Experiments {
			result, err := e.run(ctx, run, c.Analyzers, config)
			if err != nil {
				if isFatal(err) {
					return out, err
				}
				logFailure(config.Logger, e.Name, run, err)
				result = nil
			} else {
				out.Runs[run][e.Name] = result
			}
			names = append(names, e.Name)
			results = append(results, result)
		}

		for name, cmp := range c.Comparators {
			cmp.Compare(names, gatherDatasets(name, results))
		}
	}
	return out, nil
}

func gatherDatasets(analysis string, results []*TrainResult) []DataSet {
	datasets := make([]DataSet, len(results))
	for i, result := range results {
		if result == nil {
			continue
		}
		datasets[i] = result.Datasets[analysis]
	}
	return datasets
}

func isFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrCancelled)
}

func logFailure(l logrus.FieldLogger, name string, run int, err error) {
	if l == nil {
		return
	}
	l.WithFields(logrus.Fields{"experiment": name, "run": run}).WithError(err).Error("experiment failed")
}

// parallelWork is a struct that contains all the information needed to run an experiment
type parallelWork struct {
	index      int
	experiment *ParallelExperiment
	comp       *ParallelComparison
	runNumber  int
	writer     io.Writer
	config     *ComparisonConfig
}

// parallelResult is a struct that contains the result of running an experiment
type parallelResult struct {
	index  int
	result *TrainResult
	err    error
}

// parallelWorker is a worker that runs experiments
type parallelWorker struct {
	id int
}

// Worker main loop that consumes work from a channel
func (w *parallelWorker) run(ctx context.Context, workCh <-chan *parallelWork, resultsCh chan<- *parallelResult) {
	for work := range workCh {
		resultsCh <- w.runWork(ctx, work)
	}
}

// Run an experiment with environment and policy instances owned by this worker
func (w *parallelWorker) runWork(ctx context.Context, work *parallelWork) *parallelResult {
	analyzers := make(map[string]Analyzer)
	for name, aC := range work.comp.Analyzers {
		analyzers[name] = aC.NewAnalyzer(work.experiment.Name, work.runNumber)
	}

	exp := &Experiment{
		Name:        work.experiment.Name,
		Environment: work.experiment.Environment.NewEnvironment(w.id),
		Policy:      work.experiment.Policy.NewPolicy(),
		Seed:        work.experiment.Seed,
	}

	config := *work.config
	if work.writer != nil {
		config.Writer = work.writer
	}
	result, err := exp.run(ctx, work.runNumber, analyzers, &config)
	return &parallelResult{
		index:  work.index,
		result: result,
		err:    err,
	}
}

// Run trains the experiments of each run concurrently on parallelism
// workers. Every experiment gets fresh environment, policy and analyzer
// instances and its own random stream, so workers share no mutable state.
// Comparators run once all experiments of the run have finished.
func (c *ParallelComparison) Run(ctx context.Context, runs int, config *ComparisonConfig, parallelism int) (*ComparisonResult, error) {
	if parallelism <= 0 {
		return nil, fmt.Errorf("%w: parallelism must be positive, got %d", ErrConfiguration, parallelism)
	}
	out := newComparisonResult(runs)
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return out, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		default:
		}

		var writer *uilive.Writer
		if config.Writer != nil {
			writer = uilive.New()
			writer.Out = config.Writer
			writer.Start()
			fmt.Fprintf(writer, "Run %d\n", run)
		}

		workCh := make(chan *parallelWork, parallelism)
		resultsCh := make(chan *parallelResult, parallelism)
		wg := new(sync.WaitGroup)

		for i := 0; i < parallelism; i++ {
			wg.Add(1)
			worker := &parallelWorker{id: i}
			go func() {
				defer wg.Done()
				worker.run(ctx, workCh, resultsCh)
			}()
		}

		go func() {
			defer close(workCh)
			for i, e := range c.Experiments {
				work := &parallelWork{
					index:      i,
					experiment: e,
					comp:       c,
					runNumber:  run,
					config:     config,
				}
				if writer != nil {
					work.writer = writer.Newline()
				}
				select {
				case <-ctx.Done():
					return
				case workCh <- work:
				}
			}
		}()

		go func() {
			wg.Wait()
			close(resultsCh)
		}()

		results := make([]*TrainResult, len(c.Experiments))
		var fatal error
		for r := range resultsCh {
			name := c.Experiments[r.index].Name
			if r.err != nil {
				if isFatal(r.err) && fatal == nil {
					fatal = r.err
				}
				logFailure(config.Logger, name, run, r.err)
				continue
			}
			results[r.index] = r.result
			out.Runs[run][name] = r.result
		}
		if writer != nil {
			writer.Stop()
		}
		if fatal != nil {
			return out, fatal
		}

		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			names[i] = e.Name
		}
		for name, cC := range c.Comparators {
			cC.NewComparator(run).Compare(names, gatherDatasets(name, results))
		}
	}
	return out, nil
}
