package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "hymnarium",
		Short:         "Hymnal content delivery: API server, bot and media tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newLyricsCommand())
	rootCmd.AddCommand(newSignCommand(ctx))
	rootCmd.AddCommand(newMediaCommand(ctx))

	return rootCmd
}
