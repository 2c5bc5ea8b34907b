package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/velomagg/core/coverage"
	"github.com/kilianp07/velomagg/core/efficiency"
	coremetrics "github.com/kilianp07/velomagg/core/metrics"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/core/stats"
	"github.com/kilianp07/velomagg/infra/logger"
)

// InfluxSink writes analysis results to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client resources.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(points ...*write.Point) error {
	if len(points) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordEfficiency writes one station_efficiency point per station.
func (s *InfluxSink) RecordEfficiency(run coremetrics.RunInfo, records []efficiency.Record) error {
	points := make([]*write.Point, 0, len(records))
	for _, r := range records {
		points = append(points, stationPoint(run, r))
	}
	return s.write(points...)
}

func stationPoint(run coremetrics.RunInfo, r efficiency.Record) *write.Point {
	return write.NewPointWithMeasurement("station_efficiency").
		AddTag("station_id", r.ID).
		AddTag("status", r.Status).
		AddTag("run_id", run.RunID).
		AddField("efficiency", round3(r.EfficiencyScore)).
		AddField("balance", round3(r.BalanceScore)).
		AddField("availability", round3(r.AvailabilityScore)).
		AddField("occupancy", round3(r.OccupancyRate)).
		AddField("utilization", round3(r.UtilizationRate)).
		AddField("bikes", r.AvailableBikes).
		AddField("free_slots", r.FreeSlots).
		SetTime(run.Time)
}

// RecordProblems writes one problem_stations point per category.
func (s *InfluxSink) RecordProblems(run coremetrics.RunInfo, report efficiency.ProblemReport) error {
	points := make([]*write.Point, 0, len(efficiency.Categories))
	for _, c := range efficiency.Categories {
		points = append(points, write.NewPointWithMeasurement("problem_stations").
			AddTag("category", string(c)).
			AddTag("run_id", run.RunID).
			AddField("count", report.Count(c)).
			SetTime(run.Time))
	}
	return s.write(points...)
}

// RecordCoverage writes the network_coverage point.
func (s *InfluxSink) RecordCoverage(run coremetrics.RunInfo, report coverage.Report) error {
	return s.write(write.NewPointWithMeasurement("network_coverage").
		AddTag("run_id", run.RunID).
		AddField("radius_km", report.RadiusKm).
		AddField("avg_distance_km", round3(report.AverageDistance)).
		AddField("min_distance_km", round3(report.MinDistance)).
		AddField("isolated", len(report.Isolated)).
		AddField("dense", len(report.Dense)).
		AddField("mean_density", round3(report.MeanDensity)).
		SetTime(run.Time))
}

// RecordSummary writes the network_summary point.
func (s *InfluxSink) RecordSummary(run coremetrics.RunInfo, summary stats.Summary) error {
	g := summary.General
	return s.write(write.NewPointWithMeasurement("network_summary").
		AddTag("run_id", run.RunID).
		AddField("stations", g.TotalStations).
		AddField("working_stations", g.WorkingStations).
		AddField("bikes", g.TotalBikes).
		AddField("capacity", g.TotalCapacity).
		AddField("avg_occupancy", round3(g.AverageOccupancy)).
		AddField("median_occupancy", round3(g.MedianOccupancy)).
		SetTime(run.Time))
}

// RecordPeaks writes one peak_forecast point per non-empty report.
func (s *InfluxSink) RecordPeaks(run coremetrics.RunInfo, reports []prediction.Report) error {
	var points []*write.Point
	for _, r := range reports {
		if r.Empty() {
			continue
		}
		points = append(points, write.NewPointWithMeasurement("peak_forecast").
			AddTag("station_id", r.StationID).
			AddTag("run_id", run.RunID).
			AddField("weekday_peak", r.Forecast.NextWeekdayPeak).
			AddField("weekend_peak", r.Forecast.NextWeekendPeak).
			AddField("samples", r.Samples).
			SetTime(run.Time))
	}
	return s.write(points...)
}

// RecordRun writes the analysis_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	outcome := "success"
	if !ev.Success {
		outcome = "failure"
	}
	return s.write(write.NewPointWithMeasurement("analysis_run").
		AddTag("outcome", outcome).
		AddTag("run_id", ev.RunID).
		AddField("duration_ms", round3(float64(ev.Duration)/float64(time.Millisecond))).
		AddField("stations", ev.Stations).
		AddField("rejected", ev.Rejected).
		SetTime(ev.Time))
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
