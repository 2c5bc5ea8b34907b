package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/velomagg/app"
	"github.com/kilianp07/velomagg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis on a schedule and serve the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, _ *config.Config, svc *app.Service) error {
			return svc.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
