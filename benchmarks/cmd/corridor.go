package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/tabular-rl/benchmarks/common"
	"github.com/zeu5/tabular-rl/benchmarks/corridor"
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

func CorridorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corridor",
		Short: "Run corridor benchmarks",
	}

	cmd.AddCommand(
		corridorTrainCommand(),
		corridorCompareCommand(),
	)

	return cmd
}

func corridorTrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an epsilon-greedy agent on the corridor",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := signalContext()
			defer done()

			env, err := corridor.NewEnvironment(corridor.ConfigFromFlags(flags))
			if err != nil {
				return err
			}
			if err := flags.Record(); err != nil {
				return err
			}
			report, err := common.Train(ctx, "corridor", env, flags, logger, os.Stdout)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}

	return cmd
}

func corridorCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare exploration policies on the corridor",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := signalContext()
			defer done()

			cmp, err := corridor.PrepareExplorationComparison(flags)
			if err != nil {
				return err
			}
			if err := flags.Record(); err != nil {
				return err
			}
			return runComparison(ctx, cmp)
		},
	}

	return cmd
}

func printReport(report *common.Report) {
	util.RenderPolicy(os.Stdout, report.Result.Policy, true)
	fmt.Printf("Greedy: mean %.3f, stddev %.3f\n", report.Greedy.Mean, report.Greedy.StdDev)
	fmt.Printf("Random: mean %.3f, stddev %.3f\n", report.Random.Mean, report.Random.StdDev)
	if cp, ok := report.Result.Statistics.Last(); ok {
		fmt.Printf("Last checkpoint: episode %d, mean %.3f, stddev %.3f\n", cp.Episode, cp.Mean, cp.StdDev)
	}
}

func runComparison(ctx context.Context, cmp *core.ParallelComparison) error {
	result, err := cmp.Run(ctx, flags.NumRuns, &core.ComparisonConfig{
		Train:  flags.TrainConfig(),
		Logger: logger,
		Writer: os.Stdout,
	}, flags.Parallelism)
	if err != nil {
		return err
	}
	for run, experiments := range result.Runs {
		for _, e := range cmp.Experiments {
			r, ok := experiments[e.Name]
			if !ok {
				fmt.Printf("Run %d, %s: failed\n", run, e.Name)
				continue
			}
			if cp, ok := r.Statistics.Last(); ok {
				fmt.Printf("Run %d, %s: mean %.3f, stddev %.3f\n", run, e.Name, cp.Mean, cp.StdDev)
			}
		}
	}
	return nil
}
