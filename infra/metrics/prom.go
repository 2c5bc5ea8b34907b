package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/velomagg/core/coverage"
	"github.com/kilianp07/velomagg/core/efficiency"
	coremetrics "github.com/kilianp07/velomagg/core/metrics"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/core/stats"
)

const namespace = "velomagg"

// PromSink exposes the latest analysis results as Prometheus gauges.
// Per-station gauges are reset on every run so removed stations disappear.
type PromSink struct {
	efficiency  *prometheus.GaugeVec
	occupancy   *prometheus.GaugeVec
	problems    *prometheus.GaugeVec
	coverage    *prometheus.GaugeVec
	network     *prometheus.GaugeVec
	peaks       *prometheus.GaugeVec
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
}

// NewPromSink registers analysis metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		efficiency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_efficiency_score",
			Help:      "Composite efficiency score of a station in [0,1]",
		}, []string{"station_id"}),
		occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_occupancy_rate",
			Help:      "Share of docks holding a bike",
		}, []string{"station_id"}),
		problems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "problem_stations",
			Help:      "Number of stations per problem category",
		}, []string{"category"}),
		coverage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage",
			Help:      "Spatial coverage indicators of the network",
		}, []string{"indicator"}),
		network: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network",
			Help:      "Network-wide totals of the latest snapshot",
		}, []string{"indicator"}),
		peaks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_peak_hour",
			Help:      "Predicted peak hour of a station, -1 when undefined",
		}, []string{"station_id", "period"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Analysis runs by outcome",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of successful analysis runs",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	var err error
	if s.efficiency, err = register(reg, s.efficiency); err != nil {
		return nil, err
	}
	if s.occupancy, err = register(reg, s.occupancy); err != nil {
		return nil, err
	}
	if s.problems, err = register(reg, s.problems); err != nil {
		return nil, err
	}
	if s.coverage, err = register(reg, s.coverage); err != nil {
		return nil, err
	}
	if s.network, err = register(reg, s.network); err != nil {
		return nil, err
	}
	if s.peaks, err = register(reg, s.peaks); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(reg, s.runDuration); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when an identical one
// exists, so several sinks can share a registerer.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordEfficiency replaces the per-station gauges.
func (s *PromSink) RecordEfficiency(_ coremetrics.RunInfo, records []efficiency.Record) error {
	s.efficiency.Reset()
	s.occupancy.Reset()
	for _, r := range records {
		s.efficiency.WithLabelValues(r.ID).Set(r.EfficiencyScore)
		s.occupancy.WithLabelValues(r.ID).Set(r.OccupancyRate)
	}
	return nil
}

// RecordProblems sets one gauge per category, zero included.
func (s *PromSink) RecordProblems(_ coremetrics.RunInfo, report efficiency.ProblemReport) error {
	for _, c := range efficiency.Categories {
		s.problems.WithLabelValues(string(c)).Set(float64(report.Count(c)))
	}
	return nil
}

// RecordCoverage sets the coverage indicators.
func (s *PromSink) RecordCoverage(_ coremetrics.RunInfo, report coverage.Report) error {
	s.coverage.WithLabelValues("average_distance_km").Set(report.AverageDistance)
	s.coverage.WithLabelValues("min_distance_km").Set(report.MinDistance)
	s.coverage.WithLabelValues("isolated_stations").Set(float64(len(report.Isolated)))
	s.coverage.WithLabelValues("dense_stations").Set(float64(len(report.Dense)))
	s.coverage.WithLabelValues("mean_density").Set(report.MeanDensity)
	return nil
}

// RecordSummary sets the network totals.
func (s *PromSink) RecordSummary(_ coremetrics.RunInfo, summary stats.Summary) error {
	g := summary.General
	s.network.WithLabelValues("stations").Set(float64(g.TotalStations))
	s.network.WithLabelValues("working_stations").Set(float64(g.WorkingStations))
	s.network.WithLabelValues("bikes").Set(float64(g.TotalBikes))
	s.network.WithLabelValues("capacity").Set(float64(g.TotalCapacity))
	s.network.WithLabelValues("average_occupancy").Set(g.AverageOccupancy)
	return nil
}

// RecordPeaks replaces the peak-hour gauges.
func (s *PromSink) RecordPeaks(_ coremetrics.RunInfo, reports []prediction.Report) error {
	s.peaks.Reset()
	for _, r := range reports {
		s.peaks.WithLabelValues(r.StationID, "weekday").Set(float64(r.Forecast.NextWeekdayPeak))
		s.peaks.WithLabelValues(r.StationID, "weekend").Set(float64(r.Forecast.NextWeekendPeak))
	}
	return nil
}

// RecordRun counts the run and observes its duration when it succeeded.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	if !ev.Success {
		s.runs.WithLabelValues("failure").Inc()
		return nil
	}
	s.runs.WithLabelValues("success").Inc()
	s.runDuration.Observe(ev.Duration.Seconds())
	return nil
}
