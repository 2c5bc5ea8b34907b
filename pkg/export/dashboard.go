package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/stats"
)

// HistogramBins caps the number of bars of the available bikes histogram.
const HistogramBins = 20

// WriteDashboard renders an HTML page with four charts: the distribution of
// available bikes, occupancy against capacity, the spread of efficiency
// scores and the share of each station status.
func WriteDashboard(w io.Writer, title string, records []efficiency.Record) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		bikesHistogram(records),
		occupancyScatter(records),
		efficiencyBox(records),
		statusPie(records),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

func bikesHistogram(records []efficiency.Record) *charts.Bar {
	bikes := make([]int, len(records))
	for i, r := range records {
		bikes[i] = r.AvailableBikes
	}
	labels, counts := Histogram(bikes, HistogramBins)
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Available bikes"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Bikes"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Stations"}),
	)
	bar.SetXAxis(labels).AddSeries("Stations", data)
	return bar
}

func occupancyScatter(records []efficiency.Record) *charts.Scatter {
	data := make([]opts.ScatterData, len(records))
	for i, r := range records {
		data[i] = opts.ScatterData{Name: r.Address, Value: []any{r.TotalSlots, r.OccupancyRate}}
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Occupancy vs capacity"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Total slots", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Occupancy rate", Type: "value"}),
	)
	scatter.AddSeries("Stations", data)
	return scatter
}

func efficiencyBox(records []efficiency.Record) *charts.BoxPlot {
	scores := make([]float64, len(records))
	for i, r := range records {
		scores[i] = r.EfficiencyScore
	}
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Efficiency scores"}),
	)
	box.SetXAxis([]string{"Efficiency"}).AddSeries("Efficiency", []opts.BoxPlotData{{
		Value: []float64{
			stats.Quantile(scores, 0),
			stats.Quantile(scores, 0.25),
			stats.Quantile(scores, 0.5),
			stats.Quantile(scores, 0.75),
			stats.Quantile(scores, 1),
		},
	}})
	return box
}

func statusPie(records []efficiency.Record) *charts.Pie {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Status]++
	}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	data := make([]opts.PieData, len(statuses))
	for i, s := range statuses {
		data[i] = opts.PieData{Name: s, Value: counts[s]}
	}
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Station status"}))
	pie.AddSeries("Status", data)
	return pie
}

// Histogram counts values in at most bins equal-width integer buckets
// starting at 0. Labels are "lo" for single-value buckets and "lo-hi"
// otherwise. Empty input yields no buckets.
func Histogram(values []int, bins int) ([]string, []int) {
	if len(values) == 0 || bins <= 0 {
		return nil, nil
	}
	maxV := 0
	for _, v := range values {
		if v > maxV {
			maxV = v
		}
	}
	width := (maxV + bins) / bins // ceil((maxV+1)/bins)
	n := maxV/width + 1
	labels := make([]string, n)
	counts := make([]int, n)
	for i := range labels {
		lo, hi := i*width, i*width+width-1
		if lo == hi {
			labels[i] = fmt.Sprint(lo)
		} else {
			labels[i] = fmt.Sprintf("%d-%d", lo, hi)
		}
	}
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		counts[v/width]++
	}
	return labels, counts
}
