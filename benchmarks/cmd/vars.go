package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zeu5/tabular-rl/benchmarks/common"
	"github.com/zeu5/tabular-rl/util"
)

var (
	flags      *common.Flags = common.DefaultFlags()
	configFile string
	logger     logrus.FieldLogger = logrus.StandardLogger()
)

func AddFlags(cmd *cobra.Command) {
	d := common.DefaultFlags()
	f := cmd.PersistentFlags()
	f.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	f.String("save-path", d.SavePath, "Path to save results")
	f.Int("parallelism", d.Parallelism, "Number of parallel workers")
	f.Bool("debug", d.Debug, "Dump the last training episodes")

	f.Int("length", d.Length, "Number of corridor cells")
	f.Int("start", d.Start, "Corridor start cell, 0 for a random one")
	f.Float64("reward-left", d.RewardLeft, "Reward for reaching the left end")
	f.Float64("reward-right", d.RewardRight, "Reward for reaching the right end")
	f.Float64("discount", d.Discount, "Discount factor")

	f.Int("rows", d.Rows, "Number of grid rows")
	f.Int("cols", d.Cols, "Number of grid columns")
	f.Float64("slip", d.Slip, "Probability that a grid move goes sideways")
	f.Float64("step-penalty", d.StepPenalty, "Cost of every grid move")

	f.Int("num-runs", d.NumRuns, "Number of runs")
	f.Uint64("seed", d.Seed, "Random seed")
	f.Int("episodes", d.Episodes, "Number of episodes")
	f.Int("horizon", d.Horizon, "Maximum steps per episode")
	f.Float64("learning-rate", d.LearningRate, "Learning rate")
	f.Float64("epsilon", d.Epsilon, "Exploration rate")
	f.Float64("epsilon-min", d.EpsilonMin, "Final exploration rate of a linear decay")
	f.Float64("temperature", d.Temperature, "Softmax temperature")
	f.Float64("ucb-constant", d.UCBConstant, "Exploration constant of the UCB policy")
	f.Int("eval-every", d.EvalEvery, "Episodes between checkpoints, 0 to disable")
	f.Int("eval-episodes", d.EvalEpisodes, "Rollouts per evaluation")
	f.Int("eval-horizon", d.EvalHorizon, "Maximum steps per evaluation rollout")

	f.String("log-level", d.LogLevel, "Log level")
	f.String("log-format", d.LogFormat, "Log format, json or text")
	f.String("log-output", d.LogOutput, "Log output, stdout, stderr or a file")
}

// UpdateFlags resolves the configuration of the command being run and sets
// up logging from it.
func UpdateFlags(cmd *cobra.Command) error {
	loaded, err := common.LoadFlags(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	flags = loaded
	logger = util.NewLogger(flags.LogLevel, flags.LogFormat, flags.LogOutput)
	return nil
}

// signalContext is cancelled on an interrupt or when the returned cancel
// function is called.
func signalContext() (context.Context, context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
			logger.Warn("interrupted")
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}
