// Package report renders analysis results as plain-text reports.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/recommend"
	"github.com/kilianp07/velomagg/core/stats"
)

// Occupancy bands used to rate the network.
const (
	TargetOccupancyLow  = 0.4
	TargetOccupancyHigh = 0.6
	CriticalOccupancy   = 0.2
)

// Display limits.
const (
	TopPerCategory   = 3
	RankedStations   = 10
	SummaryAddrWidth = 40
	DetailAddrWidth  = 50
)

// Input gathers what the reports are built from.
type Input struct {
	Title           string
	Summary         stats.Summary
	Problems        efficiency.ProblemReport
	Recommendations recommend.Set
	Records         []efficiency.Record
}

// Performance rates the network by its mean occupancy.
func Performance(avgOccupancy float64) string {
	switch {
	case avgOccupancy > TargetOccupancyLow && avgOccupancy < TargetOccupancyHigh:
		return "GOOD"
	case avgOccupancy > CriticalOccupancy:
		return "WATCH"
	default:
		return "CRITICAL"
	}
}

// Truncate shortens s to width runes, marking the cut with "...".
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width]) + "..."
}

// WriteExecutiveSummary writes the short management summary.
func WriteExecutiveSummary(w io.Writer, in Input) error {
	g := in.Summary.General
	p := in.Problems
	urgent := p.Count(efficiency.Inactive) + p.Count(efficiency.AlwaysEmpty) + p.Count(efficiency.AlwaysFull)

	var b strings.Builder
	title := in.Title
	if title == "" {
		title = "BIKE-SHARE NETWORK EXECUTIVE REPORT"
	}
	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", 50))
	b.WriteString("KEY INDICATORS\n")
	fmt.Fprintf(&b, "- Network: %d stations (%d active)\n", g.TotalStations, g.WorkingStations)
	fmt.Fprintf(&b, "- Fleet: %d bikes for %d docks\n", g.TotalBikes, g.TotalCapacity)
	fmt.Fprintf(&b, "- Occupancy: %.1f%% (target: %.0f-%.0f%%)\n", g.AverageOccupancy*100, TargetOccupancyLow*100, TargetOccupancyHigh*100)
	fmt.Fprintf(&b, "- Performance: %s\n\n", Performance(g.AverageOccupancy))

	fmt.Fprintf(&b, "ALERTS (%d urgent)\n", urgent)
	fmt.Fprintf(&b, "- Out of service: %d\n", p.Count(efficiency.Inactive))
	fmt.Fprintf(&b, "- Empty: %d\n", p.Count(efficiency.AlwaysEmpty))
	fmt.Fprintf(&b, "- Full: %d\n", p.Count(efficiency.AlwaysFull))
	fmt.Fprintf(&b, "- Low efficiency: %d\n\n", p.Count(efficiency.LowEfficiency))

	if g.TotalStations > 0 {
		ex := in.Summary.Extremes
		b.WriteString("PERFORMANCE\n")
		fmt.Fprintf(&b, "- Most occupied: %s (%.1f%%)\n", Truncate(ex.MostOccupied.Address, SummaryAddrWidth), ex.MostOccupied.OccupancyRate*100)
		fmt.Fprintf(&b, "- Least occupied: %s (%.1f%%)\n\n", Truncate(ex.LeastOccupied.Address, SummaryAddrWidth), ex.LeastOccupied.OccupancyRate*100)
	}

	b.WriteString("PRIORITY ACTIONS\n")
	for _, c := range recommend.Categories {
		items := in.Recommendations.ByCategory(c)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(string(c)))
		for i, r := range items {
			if i == TopPerCategory {
				break
			}
			fmt.Fprintf(&b, "  - %s\n", r.Message)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteDetailed writes the executive summary followed by occupancy quartiles
// and the best and worst stations by efficiency.
func WriteDetailed(w io.Writer, in Input) error {
	if err := WriteExecutiveSummary(w, in); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n\n%s\nDETAILED REPORT\n%s\n", strings.Repeat("=", 50), strings.Repeat("=", 50))

	occupancy := make([]float64, len(in.Records))
	for i, r := range in.Records {
		occupancy[i] = r.OccupancyRate
	}
	b.WriteString("\n\nOCCUPANCY QUARTILES\n")
	for _, q := range []float64{0.25, 0.5, 0.75} {
		fmt.Fprintf(&b, "Q%.0f (%.0f%%): %.1f%%\n", q*4, q*100, stats.Quantile(occupancy, q)*100)
	}

	best, worst := Ranked(in.Records, RankedStations)
	fmt.Fprintf(&b, "\n\nTOP %d MOST EFFICIENT STATIONS\n", RankedStations)
	writeRanking(&b, best)
	fmt.Fprintf(&b, "\n\nTOP %d STATIONS TO IMPROVE\n", RankedStations)
	writeRanking(&b, worst)

	_, err := io.WriteString(w, b.String())
	return err
}

// Ranked returns up to n records with the highest and with the lowest
// efficiency. Equal scores keep their input order.
func Ranked(records []efficiency.Record, n int) (best, worst []efficiency.Record) {
	sorted := make([]efficiency.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EfficiencyScore > sorted[j].EfficiencyScore })
	if n > len(sorted) {
		n = len(sorted)
	}
	best = append(best, sorted[:n]...)

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EfficiencyScore < sorted[j].EfficiencyScore })
	worst = append(worst, sorted[:n]...)
	return best, worst
}

func writeRanking(b *strings.Builder, recs []efficiency.Record) {
	for _, r := range recs {
		fmt.Fprintf(b, "%-*s %.1f%%\n", DetailAddrWidth, Truncate(r.Address, DetailAddrWidth), r.EfficiencyScore*100)
	}
}
