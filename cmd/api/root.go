package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the StorySpotlight CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storyspotlight",
		Short: "StorySpotlight book review API",
		Long: `StorySpotlight serves the book catalogue, reviews and account
endpoints (register, login, logout) backed by PostgreSQL.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewImportBooksCmd())

	return cmd
}
