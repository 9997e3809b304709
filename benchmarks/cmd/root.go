package cmd

import "github.com/spf13/cobra"

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tabrl",
		Short:         "Tabular Q-learning benchmarks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return UpdateFlags(cmd)
		},
	}
	AddFlags(cmd)

	cmd.AddCommand(
		CorridorCommand(),
		GridworldCommand(),
		ServeCommand(),
	)

	return cmd
}
