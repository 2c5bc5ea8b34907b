package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/velomagg/config"
	"github.com/kilianp07/velomagg/core/efficiency"
	coremetrics "github.com/kilianp07/velomagg/core/metrics"
	"github.com/kilianp07/velomagg/core/model"
	"github.com/kilianp07/velomagg/core/monitoring"
	coremqtt "github.com/kilianp07/velomagg/core/mqtt"
	"github.com/kilianp07/velomagg/core/recommend"
	"github.com/kilianp07/velomagg/core/source"
	"github.com/kilianp07/velomagg/infra/logger"
	"github.com/kilianp07/velomagg/infra/mqtt"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type runSink struct {
	mu      sync.Mutex
	records int
	runs    []coremetrics.RunEvent
}

func (s *runSink) RecordEfficiency(_ coremetrics.RunInfo, recs []efficiency.Record) error {
	s.mu.Lock()
	s.records += len(recs)
	s.mu.Unlock()
	return nil
}

func (s *runSink) RecordRun(ev coremetrics.RunEvent) error {
	s.mu.Lock()
	s.runs = append(s.runs, ev)
	s.mu.Unlock()
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SetDefaults()
	return cfg
}

func network() *source.Static {
	var series []model.Sample
	for d := 1; d <= 3; d++ {
		day := now.AddDate(0, 0, -d).Truncate(24 * time.Hour)
		series = append(series,
			model.Sample{Timestamp: day.Add(7 * time.Hour), AvailableBikes: 6},
			model.Sample{Timestamp: day.Add(8 * time.Hour), AvailableBikes: 9},
			model.Sample{Timestamp: day.Add(18 * time.Hour), AvailableBikes: 4},
		)
	}
	return &source.Static{
		Stations: []model.Station{
			{ID: "s1", Address: "Comedie", AvailableBikes: 0, FreeSlots: 5, TotalSlots: 10, Status: "working", Latitude: 43.600, Longitude: 3.88},
			{ID: "s2", Address: "Gare", AvailableBikes: 5, FreeSlots: 5, TotalSlots: 10, Status: "broken", Latitude: 43.603, Longitude: 3.88},
			{ID: "s3", Address: "Antigone", AvailableBikes: 10, FreeSlots: 0, TotalSlots: 10, Status: "working", Latitude: 43.610, Longitude: 3.88},
			{ID: "s4", Address: "Broken feed", AvailableBikes: 12, FreeSlots: 0, TotalSlots: 10, Status: "working"},
		},
		Series: map[string][]model.Sample{"s1": series},
	}
}

func TestRunOnce(t *testing.T) {
	sink := &runSink{}
	alerts := mqtt.NewMockPublisher()
	svc := NewWithDeps(testConfig(), Deps{
		Source: network(),
		Sink:   sink,
		Alerts: alerts,
		Log:    logger.NopLogger{},
		Now:    func() time.Time { return now },
	})
	defer func() { _ = svc.Close() }()
	runs := svc.Runs().Subscribe()

	res, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, now, res.Time)

	require.Len(t, res.Records, 3)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "s4", res.Rejected[0].StationID)
	assert.ErrorIs(t, res.Rejected[0], model.ErrDataIntegrity)

	assert.Equal(t, []string{"s1"}, res.Problems.IDs(efficiency.AlwaysEmpty))
	assert.Equal(t, []string{"s2"}, res.Problems.IDs(efficiency.Inactive))
	assert.Equal(t, 6, res.Coverage.PairCount)
	assert.Equal(t, 3, res.Summary.General.TotalStations)
	require.Len(t, res.Recommendations.Urgent, 3)

	require.Len(t, res.Peaks, 1, "only s1 has history")
	assert.Equal(t, "s1", res.Peaks[0].StationID)
	assert.Contains(t, res.Temporal, "s1")

	published := alerts.Published()
	require.Len(t, published, 3)
	assert.Equal(t, string(efficiency.Inactive), published[0].Problem)
	assert.Equal(t, []string{"s1"}, published[1].StationIDs)
	assert.Equal(t, res.RunID, published[2].RunID)

	require.Len(t, sink.runs, 1)
	assert.True(t, sink.runs[0].Success)
	assert.Equal(t, 1, sink.runs[0].Rejected)
	assert.Equal(t, 3, sink.records)

	select {
	case ev := <-runs:
		assert.Equal(t, res.RunID, ev.RunID)
		assert.Equal(t, 1, ev.Rejected)
	case <-time.After(time.Second):
		t.Fatal("RunCompleted not published")
	}
}

func TestRunOnceSourceFailure(t *testing.T) {
	sink := &runSink{}
	src := &source.Static{Err: source.ErrSourceUnavailable}
	svc := NewWithDeps(testConfig(), Deps{Source: src, Sink: sink, Log: logger.NopLogger{}})

	res, err := svc.RunOnce(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)
	require.Len(t, sink.runs, 1)
	assert.False(t, sink.runs[0].Success)
	_, published := svc.Runs().Last()
	assert.False(t, published)
}

func TestRunOnceEmptyNetwork(t *testing.T) {
	svc := NewWithDeps(testConfig(), Deps{Source: &source.Static{}, Log: logger.NopLogger{}})
	res, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Zero(t, res.Coverage.PairCount)
	assert.Empty(t, res.Recommendations.ByCategory(recommend.Deployment))
	assert.Empty(t, res.Peaks)
}

func TestRunOnceRejectsOverlap(t *testing.T) {
	svc := NewWithDeps(testConfig(), Deps{Source: network(), Log: logger.NopLogger{}})
	svc.running.Lock()
	_, err := svc.RunOnce(context.Background())
	svc.running.Unlock()
	assert.True(t, errors.Is(err, ErrRunInProgress))
}

func TestSampleStationsLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.SampleStations = 0
	svc := NewWithDeps(cfg, Deps{Source: network(), Log: logger.NopLogger{}, Now: func() time.Time { return now }})
	res, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Peaks)
	assert.Empty(t, res.Temporal)
}

func TestPredictPeaks(t *testing.T) {
	svc := NewWithDeps(testConfig(), Deps{Source: network(), Log: logger.NopLogger{}, Now: func() time.Time { return now }})
	rep, err := svc.PredictPeaks(context.Background(), "s1", 7)
	require.NoError(t, err)
	assert.Equal(t, "s1", rep.StationID)
	assert.Equal(t, 9, rep.Samples)

	rep, err = svc.PredictPeaks(context.Background(), "unknown", 7)
	require.NoError(t, err)
	assert.True(t, rep.Empty())
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.API.Address = ""
	svc := NewWithDeps(cfg, Deps{Source: network(), Log: logger.NopLogger{}, Now: func() time.Time { return now }})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	assert.Eventually(t, func() bool {
		_, ok := svc.Runs().Last()
		return ok
	}, 2*time.Second, 10*time.Millisecond, "run on start")
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestAlertFailureDoesNotAbortRun(t *testing.T) {
	alerts := mqtt.NewMockPublisher()
	alerts.FailWith[string(efficiency.Inactive)] = true
	svc := NewWithDeps(testConfig(), Deps{Source: network(), Alerts: alerts, Log: logger.NopLogger{}, Now: func() time.Time { return now }})

	res, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Recommendations.Urgent, 3)
	published := alerts.Published()
	require.Len(t, published, 2)
	assert.Equal(t, string(efficiency.AlwaysEmpty), published[0].Problem)
}

type captured struct {
	monitoring.NopMonitor
	mu   sync.Mutex
	tags []map[string]string
}

func (c *captured) CaptureException(_ error, tags map[string]string) {
	c.mu.Lock()
	c.tags = append(c.tags, tags)
	c.mu.Unlock()
}

func TestSourceFailureIsReported(t *testing.T) {
	mon := &captured{}
	monitoring.Init(mon)
	t.Cleanup(func() { monitoring.Init(nil) })

	svc := NewWithDeps(testConfig(), Deps{Source: &source.Static{Err: source.ErrSourceUnavailable}, Log: logger.NopLogger{}})
	_, err := svc.RunOnce(context.Background())
	require.Error(t, err)
	require.Len(t, mon.tags, 1)
	assert.Equal(t, "fetch", mon.tags[0]["stage"])
	assert.NotEmpty(t, mon.tags[0]["run_id"])
}

func TestCronLoggerPairs(t *testing.T) {
	assert.Equal(t, " now=1 entry=2", pairs([]any{"now", 1, "entry", 2}))
	assert.Empty(t, pairs([]any{"dangling"}))
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishAlert(alert coremqtt.Alert) (string, error) {
	args := m.Called(alert)
	return args.String(0), args.Error(1)
}

func TestAlertsCarryRunAndStations(t *testing.T) {
	pub := &mockPublisher{}
	isProblem := func(p efficiency.Category, ids ...string) any {
		return mock.MatchedBy(func(a coremqtt.Alert) bool {
			return a.Problem == string(p) && assert.ObjectsAreEqual(ids, a.StationIDs) && a.RunID != "" && a.Count == len(ids)
		})
	}
	pub.On("PublishAlert", isProblem(efficiency.Inactive, "s2")).Return("a1", nil).Once()
	pub.On("PublishAlert", isProblem(efficiency.AlwaysEmpty, "s1")).Return("a2", nil).Once()
	pub.On("PublishAlert", isProblem(efficiency.AlwaysFull, "s3")).Return("", coremqtt.ErrPublish).Once()

	svc := NewWithDeps(testConfig(), Deps{Source: network(), Alerts: pub, Log: logger.NopLogger{}, Now: func() time.Time { return now }})
	_, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	pub.AssertExpectations(t)
}
