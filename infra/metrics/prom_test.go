package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/velomagg/core/coverage"
	"github.com/kilianp07/velomagg/core/efficiency"
	coremetrics "github.com/kilianp07/velomagg/core/metrics"
	"github.com/kilianp07/velomagg/core/model"
	"github.com/kilianp07/velomagg/core/prediction"
)

func record(id string, score, occupancy float64) efficiency.Record {
	return efficiency.Record{
		Station:         model.Station{ID: id, OccupancyRate: occupancy},
		EfficiencyScore: score,
	}
}

func TestPromSinkRecordEfficiency(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	run := coremetrics.RunInfo{RunID: "r1", Time: time.Now()}

	require.NoError(t, sink.RecordEfficiency(run, []efficiency.Record{record("a", 0.5, 0.2), record("b", 0.75, 0.6)}))
	expected := `
# HELP velomagg_station_efficiency_score Composite efficiency score of a station in [0,1]
# TYPE velomagg_station_efficiency_score gauge
velomagg_station_efficiency_score{station_id="a"} 0.5
velomagg_station_efficiency_score{station_id="b"} 0.75
`
	assert.NoError(t, testutil.CollectAndCompare(sink.efficiency, strings.NewReader(expected)))

	// a station that vanished from the feed must not linger
	require.NoError(t, sink.RecordEfficiency(run, []efficiency.Record{record("b", 0.25, 0.6)}))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.efficiency))
	assert.Equal(t, 0.25, testutil.ToFloat64(sink.efficiency.WithLabelValues("b")))
}

func TestPromSinkProblemsAndCoverage(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	run := coremetrics.RunInfo{RunID: "r1"}

	report := efficiency.ProblemReport{efficiency.Inactive: {record("x", 0, 0)}}
	require.NoError(t, sink.RecordProblems(run, report))
	assert.Equal(t, len(efficiency.Categories), testutil.CollectAndCount(sink.problems))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.problems.WithLabelValues("inactive")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.problems.WithLabelValues("always_full")))

	require.NoError(t, sink.RecordCoverage(run, coverage.Report{AverageDistance: 1.5, Isolated: []coverage.Zone{{}, {}}}))
	assert.Equal(t, 1.5, testutil.ToFloat64(sink.coverage.WithLabelValues("average_distance_km")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.coverage.WithLabelValues("isolated_stations")))
}

func TestPromSinkRunsAndPeaks(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{Success: true, Duration: 200 * time.Millisecond}))
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs.WithLabelValues("failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.runDuration))

	peaks := []prediction.Report{{
		StationID: "s1",
		Forecast:  prediction.Forecast{NextWeekdayPeak: 8, NextWeekendPeak: prediction.NoPeak},
	}}
	require.NoError(t, sink.RecordPeaks(coremetrics.RunInfo{}, peaks))
	assert.Equal(t, 8.0, testutil.ToFloat64(sink.peaks.WithLabelValues("s1", "weekday")))
	assert.Equal(t, -1.0, testutil.ToFloat64(sink.peaks.WithLabelValues("s1", "weekend")))
}

func TestPromSinkSharesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	assert.Same(t, first.efficiency, second.efficiency)
}
