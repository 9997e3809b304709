package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/server"
)

func ServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [policy.jsonl]",
		Args:  cobra.ExactArgs(1),
		Short: "Serve a recorded greedy policy over http",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := signalContext()
			defer done()

			policy, err := core.ReadGreedyPolicy(args[0])
			if err != nil {
				return err
			}
			return server.NewPolicyServer(addr, policy, logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Listen address")

	return cmd
}
