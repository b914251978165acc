package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the newsletter CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Newsletter subscription and delivery service",
		Long: `newsletter collects double opt-in subscriptions and fans newsletter
issues out to confirmed subscribers. Configuration is read from the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewAdminCmd())

	return cmd
}
