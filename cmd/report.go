package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/velomagg/app"
	"github.com/kilianp07/velomagg/config"
	"github.com/kilianp07/velomagg/core/report"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run one analysis and write the detailed report",
	RunE:  writeReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (stdout when empty)")
	rootCmd.AddCommand(reportCmd)
}

func writeReport(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, _ *config.Config, svc *app.Service) error {
		res, err := svc.RunOnce(ctx)
		if err != nil {
			return err
		}
		var w io.Writer = cmd.OutOrStdout()
		if reportOut != "" {
			f, err := os.Create(reportOut)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			defer func() {
				if err := f.Close(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "close report: %v\n", err)
				}
			}()
			w = f
		}
		return report.WriteDetailed(w, res.ReportInput("BIKE-SHARE NETWORK DETAILED REPORT"))
	})
}
