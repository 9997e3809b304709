package common

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zeu5/tabular-rl/analysis"
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/policies"
	"github.com/zeu5/tabular-rl/util"
	"golang.org/x/exp/rand"
)

// Report is the outcome of a single training run: the trained policy, its
// learning curve and a comparison with the uniformly random policy.
type Report struct {
	Result *core.TrainResult
	Greedy *core.EvalResult
	Random *core.EvalResult
}

// Train runs one Q-learning experiment with the epsilon-greedy behaviour
// policy described by the flags, then evaluates the greedy policy against a
// random baseline on the same rollout seeds. Results are written under
// flags.SavePath.
func Train(ctx context.Context, name string, env core.Environment, flags *Flags, logger logrus.FieldLogger, out io.Writer) (*Report, error) {
	policy, err := policies.NewEpsilonGreedyPolicy(flags.Schedule())
	if err != nil {
		return nil, err
	}
	config := flags.TrainConfig()

	printer := util.NewTerminalPrinter(out, 100*time.Millisecond)
	progress := printer.NewOutput()
	printer.Start(ctx)

	opts := []core.TrainerOption{
		core.WithName(name),
		core.WithLogger(logger),
		core.WithWriter(progress),
		core.WithAnalyzer("Checkpoints", analysis.NewCheckpointAnalyzer()),
		core.WithAnalyzer("Returns", analysis.NewReturnAnalyzer(env.Discount())),
	}
	if flags.Debug {
		opts = append(opts, core.WithAnalyzer("Traces", analysis.NewTraceDumpAnalyzer(flags.SavePath, flags.Episodes-10)))
	}
	trainer, err := core.NewTrainer(env, policy, &config, rand.New(rand.NewSource(flags.Seed)), opts...)
	if err != nil {
		printer.Stop()
		return nil, err
	}
	result, err := trainer.Train(ctx)
	printer.Stop()
	if err != nil {
		return nil, err
	}

	evalConfig := &core.EvalConfig{
		Episodes: flags.EvalEpisodes,
		MaxSteps: flags.EvalHorizon,
		Discount: env.Discount(),
	}
	greedy, err := core.EvaluateParallel(ctx, result.Policy, env, evalConfig, flags.Seed+1, flags.Parallelism)
	if err != nil {
		return nil, fmt.Errorf("evaluating greedy policy: %w", err)
	}
	random, err := core.EvaluateParallel(ctx, policies.NewRandomPolicy(env.Actions()...), env, evalConfig, flags.Seed+1, flags.Parallelism)
	if err != nil {
		return nil, fmt.Errorf("evaluating random policy: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"experiment":    name,
		"greedy_mean":   greedy.Mean,
		"greedy_stddev": greedy.StdDev,
		"random_mean":   random.Mean,
		"random_stddev": random.StdDev,
	}).Info("evaluation")

	report := &Report{Result: result, Greedy: greedy, Random: random}
	if err := report.Save(flags.SavePath, name); err != nil {
		return report, err
	}
	return report, nil
}

// Save writes the greedy policy, the statistics and the learning curves.
func (r *Report) Save(savePath, name string) error {
	if err := util.SaveJson(path.Join(savePath, "statistics.json"), map[string]interface{}{
		"checkpoints": r.Result.Statistics.Checkpoints,
		"greedy":      evalSummary(r.Greedy),
		"random":      evalSummary(r.Random),
		"episodes":    r.Result.CompletedEpisodes,
		"truncated":   r.Result.TruncatedEpisodes,
		"timesteps":   r.Result.TotalTimeSteps,
	}); err != nil {
		return err
	}
	if err := r.Result.Policy.Record(path.Join(savePath, "policy.jsonl")); err != nil {
		return err
	}

	names := []string{name}
	analysis.NewCheckpointPlotter(savePath, 0).Compare(names, []core.DataSet{r.Result.Datasets["Checkpoints"]})
	analysis.NewCheckpointChart(savePath, 0).Compare(names, []core.DataSet{r.Result.Datasets["Checkpoints"]})
	analysis.NewReturnPlotter(savePath, 0).Compare(names, []core.DataSet{r.Result.Datasets["Returns"]})
	return nil
}

func evalSummary(e *core.EvalResult) map[string]float64 {
	return map[string]float64{"mean": e.Mean, "stddev": e.StdDev}
}

// PrepareComparison trains every exploration policy on env and compares
// their learning curves, coverage and episode statistics.
func PrepareComparison(flags *Flags, env core.EnvironmentConstructor, discount float64) *core.ParallelComparison {
	cmp := core.NewParallelComparison()

	if flags.Debug {
		cmp.AddAnalysis("Debug", analysis.NewTraceDumpAnalyzerConstructor(flags.SavePath, flags.Episodes-10), analysis.NewNoOpComparatorConstructor())
	}
	cmp.AddAnalysis("Checkpoints", &analysis.CheckpointAnalyzerConstructor{}, analysis.NewCheckpointPlotterConstructor(path.Join(flags.SavePath, "plots")))
	cmp.AddAnalysis("CheckpointsChart", &analysis.CheckpointAnalyzerConstructor{}, analysis.NewCheckpointChartConstructor(path.Join(flags.SavePath, "charts")))
	cmp.AddAnalysis("Returns", analysis.NewReturnAnalyzerConstructor(discount), analysis.NewReturnPlotterConstructor(path.Join(flags.SavePath, "plots")))
	cmp.AddAnalysis("Lengths", &analysis.EpisodeLengthAnalyzerConstructor{}, analysis.NewJsonComparatorConstructor(flags.SavePath, "lengths.json"))
	cmp.AddAnalysis("Visits", &analysis.VisitAnalyzerConstructor{}, analysis.NewJsonComparatorConstructor(flags.SavePath, "visits.json"))
	cmp.AddAnalysis("Coverage", &analysis.CoverageAnalyzerConstructor{}, analysis.NewCoverageComparatorConstructor(flags.SavePath))

	for _, e := range flags.ExplorationExperiments(env) {
		cmp.AddExperiment(e)
	}
	return cmp
}
