package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the nuggies CLI. Running it without a subcommand starts the bot.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "nuggies",
		Short:         "Nuggies Discord bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Connect to Discord and serve commands",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return Run(cmd.Context())
			},
		},
		newMigrateCommand(),
		newSimulateCommand(),
	)
	return root
}
