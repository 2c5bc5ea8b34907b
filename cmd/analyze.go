package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/velomagg/app"
	"github.com/kilianp07/velomagg/config"
	"github.com/kilianp07/velomagg/core/report"
	"github.com/kilianp07/velomagg/pkg/export"
)

var exportDir string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis and print the executive summary",
	RunE:  analyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&exportDir, "export-dir", "", "write every export file to this directory")
	rootCmd.AddCommand(analyzeCmd)
}

func analyze(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, cfg *config.Config, svc *app.Service) error {
		res, err := svc.RunOnce(ctx)
		if err != nil {
			return err
		}
		in := res.ReportInput("")
		out := cmd.OutOrStdout()
		if err := report.WriteExecutiveSummary(out, in); err != nil {
			return err
		}
		if len(res.Rejected) > 0 {
			fmt.Fprintf(out, "\n%d stations skipped (inconsistent data)\n", len(res.Rejected))
		}

		opts := export.Options{
			Dir:       cfg.Export.Dir,
			BaseName:  cfg.Export.BaseName,
			CSV:       cfg.Export.CSV,
			JSON:      cfg.Export.JSON,
			Report:    cfg.Export.Report,
			Dashboard: cfg.Export.Dashboard,
		}
		if exportDir != "" {
			opts.Dir = exportDir
			opts.CSV, opts.JSON, opts.Report, opts.Dashboard = true, true, true, true
		}
		if !opts.CSV && !opts.JSON && !opts.Report && !opts.Dashboard {
			return nil
		}
		paths, err := export.WriteFiles(opts, in)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintf(out, "wrote %s\n", p)
		}
		return nil
	})
}
