package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/velomagg/app"
	"github.com/kilianp07/velomagg/config"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/pkg/export"
)

var (
	peakDays int
	peakJSON bool
)

var peaksCmd = &cobra.Command{
	Use:   "peaks <station-id>",
	Short: "Predict the peak hours of a station from its history",
	Args:  cobra.ExactArgs(1),
	RunE:  predictPeaks,
}

func init() {
	peaksCmd.Flags().IntVar(&peakDays, "days", 0, "history length in days (analysis.peak_window_days when 0)")
	peaksCmd.Flags().BoolVar(&peakJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(peaksCmd)
}

func predictPeaks(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, cfg *config.Config, svc *app.Service) error {
		days := peakDays
		if days <= 0 {
			days = cfg.Analysis.PeakWindowDays
		}
		rep, err := svc.PredictPeaks(ctx, args[0], days)
		if err != nil {
			return err
		}
		if peakJSON {
			return export.WriteJSON(cmd.OutOrStdout(), rep)
		}
		return printPeaks(cmd.OutOrStdout(), args[0], days, rep)
	})
}

func hour(h int) string {
	if h == prediction.NoPeak {
		return "-"
	}
	return fmt.Sprintf("%02dh", h)
}

func printPeaks(w io.Writer, id string, days int, rep prediction.Report) error {
	if rep.Empty() {
		_, err := fmt.Fprintf(w, "no history for station %s over the last %d days\n", id, days)
		return err
	}
	_, err := fmt.Fprintf(w, "Station %s (%d samples, %d days)\n- Weekday morning peak: %s\n- Weekday evening peak: %s\n- Weekend peak: %s\n",
		id, rep.Samples, days,
		hour(rep.Weekday.MorningPeak), hour(rep.Weekday.EveningPeak), hour(rep.Weekend.MainPeak))
	return err
}
