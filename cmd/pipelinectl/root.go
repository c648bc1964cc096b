package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pipelinectl",
		Short:         "Operate the editorial pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.storeFlag, "store", "", "Store driver override (postgres or memory)")

	rootCmd.AddCommand(newPolicyCommand())
	rootCmd.AddCommand(newCalendarCommand(ctx))
	rootCmd.AddCommand(newRecalculateCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))

	return rootCmd
}
