package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/app"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Apply pending migrations, then serve the subscription, admin and publish
endpoints until SIGINT or SIGTERM.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	application, err := app.New(cmd.Context(), app.LoadConfig())
	if err != nil {
		return oops.Code("STARTUP_FAILED").With("operation", "initialize application").Wrap(err)
	}

	if err := application.Run(); err != nil {
		return oops.Code("SERVER_FAILED").Wrap(err)
	}
	return nil
}
