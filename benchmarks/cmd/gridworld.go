package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/tabular-rl/benchmarks/common"
	"github.com/zeu5/tabular-rl/benchmarks/gridworld"
)

func GridworldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gridworld",
		Short: "Run slippery gridworld benchmarks",
	}

	cmd.AddCommand(
		gridworldTrainCommand(),
		gridworldCompareCommand(),
	)

	return cmd
}

func gridworldTrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an epsilon-greedy agent on the gridworld",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := signalContext()
			defer done()

			env, err := gridworld.NewEnvironment(gridworld.ConfigFromFlags(flags))
			if err != nil {
				return err
			}
			if err := flags.Record(); err != nil {
				return err
			}
			report, err := common.Train(ctx, "gridworld", env, flags, logger, os.Stdout)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}

	return cmd
}

func gridworldCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare exploration policies on the gridworld",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := signalContext()
			defer done()

			cmp, err := gridworld.PrepareExplorationComparison(flags)
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
