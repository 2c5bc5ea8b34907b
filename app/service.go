package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	apistations "github.com/kilianp07/velomagg/api/stations"
	"github.com/kilianp07/velomagg/config"
	"github.com/kilianp07/velomagg/core/coverage"
	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/events"
	coremetrics "github.com/kilianp07/velomagg/core/metrics"
	"github.com/kilianp07/velomagg/core/model"
	"github.com/kilianp07/velomagg/core/monitoring"
	coremqtt "github.com/kilianp07/velomagg/core/mqtt"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/core/recommend"
	"github.com/kilianp07/velomagg/core/source"
	"github.com/kilianp07/velomagg/core/stats"
	"github.com/kilianp07/velomagg/infra/logger"
	"github.com/kilianp07/velomagg/infra/metrics"
	"github.com/kilianp07/velomagg/infra/montpellier"
	"github.com/kilianp07/velomagg/infra/mqtt"
	"github.com/kilianp07/velomagg/internal/eventbus"
)

// ErrRunInProgress is returned when a run is requested while another one
// has not finished.
var ErrRunInProgress = errors.New("analysis run already in progress")

// Deps are the collaborators of a Service. Nil fields get defaults: a NopSink
// and no alerting.
type Deps struct {
	Source source.DataSource
	Sink   coremetrics.MetricsSink
	Alerts coremqtt.Publisher
	Log    logger.Logger
	Now    func() time.Time
}

// Service runs the station analysis once or on a schedule.
type Service struct {
	cfg      *config.Config
	src      source.DataSource
	sink     coremetrics.MetricsSink
	alerts   coremqtt.Publisher
	runs     *eventbus.TypedBus[events.RunCompleted]
	scorer   efficiency.Scorer
	analyzer coverage.Analyzer
	log      logger.Logger
	now      func() time.Time

	running sync.Mutex
	closers []func()
}

// New creates a Service from the configuration, connecting to the station
// API, the configured metrics sinks and, when a broker is set, MQTT.
func New(cfg *config.Config) (*Service, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	deps := Deps{
		Source: montpellier.NewClient(cfg.Source),
		Sink:   sink,
	}
	svc := NewWithDeps(cfg, deps)
	if c, ok := sink.(interface{ Close() }); ok {
		svc.closers = append(svc.closers, c.Close)
	}
	if cfg.MQTT.Enabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT, svc.trigger)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.alerts = client
		svc.closers = append(svc.closers, client.Disconnect)
	}
	return svc, nil
}

// NewWithDeps creates a Service over explicit collaborators.
func NewWithDeps(cfg *config.Config, deps Deps) *Service {
	if deps.Sink == nil {
		deps.Sink = coremetrics.NopSink{}
	}
	if deps.Log == nil {
		deps.Log = logger.New("service")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	analyzer := coverage.NewAnalyzer(cfg.Analysis.RadiusKm)
	analyzer.DenseThreshold = cfg.Analysis.DenseThreshold
	return &Service{
		cfg:      cfg,
		src:      deps.Source,
		sink:     deps.Sink,
		alerts:   deps.Alerts,
		runs:     eventbus.NewTyped[events.RunCompleted](),
		scorer:   efficiency.NewScorer(),
		analyzer: analyzer,
		log:      deps.Log,
		now:      deps.Now,
	}
}

// Runs is the bus RunCompleted events are published on.
func (s *Service) Runs() *eventbus.TypedBus[events.RunCompleted] { return s.runs }

// RunOnce performs one complete analysis. Inconsistent stations are skipped
// and reported in Result.Rejected; only a source failure aborts the run.
func (s *Service) RunOnce(ctx context.Context) (*Result, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	start := s.now()
	res := &Result{RunID: uuid.NewString(), Time: start}
	s.log.Infow("analysis run started", map[string]any{"run_id": res.RunID})

	// the cache lives as long as this run
	src := source.NewRunCache(s.src)
	stations, err := src.FetchStations(ctx)
	if err != nil {
		s.recordFailure(res, err)
		return nil, fmt.Errorf("fetch stations: %w", err)
	}

	res.Records, res.Rejected = s.scorer.Score(stations)
	for _, rej := range res.Rejected {
		s.log.Warnf("skipping %v", rej)
	}
	scored := make([]model.Station, len(res.Records))
	for i, r := range res.Records {
		scored[i] = r.Station
	}

	res.Problems = efficiency.Classify(res.Records)
	res.Coverage = s.analyzer.Analyze(scored)
	res.Recommendations = recommend.Recommend(res.Problems, res.Records)
	res.Summary = stats.Summarize(scored)
	res.Peaks, res.Temporal = s.stationInsights(ctx, src, res.Records, start)

	res.Duration = s.now().Sub(start)
	hits, misses := src.Stats()
	s.log.Infow("analysis run completed", map[string]any{
		"run_id":          res.RunID,
		"stations":        len(res.Records),
		"rejected":        len(res.Rejected),
		"recommendations": res.Recommendations.Len(),
		"cache_hits":      hits,
		"cache_misses":    misses,
		"duration_ms":     res.Duration.Milliseconds(),
	})

	ev := res.Event()
	if err := metrics.Collect(s.sink, ev); err != nil {
		s.log.Errorf("record metrics: %v", err)
		monitoring.CaptureException(err, map[string]string{"run_id": res.RunID, "stage": "metrics"})
	}
	s.publishAlerts(res)
	s.runs.Publish(ev)
	return res, nil
}

func (s *Service) recordFailure(res *Result, err error) {
	s.log.Errorf("analysis run %s failed: %v", res.RunID, err)
	monitoring.CaptureException(err, map[string]string{"run_id": res.RunID, "stage": "fetch"})
	if rerr := metrics.Collect(s.sink, events.RunFailed{RunID: res.RunID, Time: res.Time, Err: err}); rerr != nil {
		s.log.Errorf("record metrics: %v", rerr)
	}
}

// stationInsights predicts peak hours and temporal patterns for the first
// sample_stations stations. Failures are logged and leave that station out.
func (s *Service) stationInsights(ctx context.Context, src source.DataSource, records []efficiency.Record, now time.Time) ([]prediction.Report, map[string]stats.Temporal) {
	n := s.cfg.Analysis.SampleStations
	if n > len(records) {
		n = len(records)
	}
	engine := prediction.NewSourceEngine(src, s.cfg.Analysis.PeakWindowDays)
	engine.Attribute = s.cfg.Source.Attribute
	peaks := make([]prediction.Report, 0, n)
	temporal := make(map[string]stats.Temporal, n)
	for _, r := range records[:n] {
		rep, err := engine.PredictPeakHours(ctx, r.ID, now)
		if err != nil {
			s.log.Warnf("peak prediction for %s: %v", r.ID, err)
			continue
		}
		if rep.Empty() {
			s.log.Debugf("no history for %s", r.ID)
		} else {
			peaks = append(peaks, rep)
		}

		from := now.AddDate(0, 0, -s.cfg.Analysis.TemporalWindowDays)
		samples, err := src.FetchTimeSeries(ctx, r.ID, s.cfg.Source.Attribute, from, now)
		if err != nil {
			s.log.Warnf("temporal patterns for %s: %v", r.ID, err)
			continue
		}
		if tp := stats.TemporalPatterns(samples); !tp.Empty() {
			temporal[r.ID] = tp
		}
	}
	return peaks, temporal
}

// PredictPeaks runs a peak-hour prediction for one station outside of a run.
func (s *Service) PredictPeaks(ctx context.Context, stationID string, days int) (prediction.Report, error) {
	engine := prediction.NewSourceEngine(s.src, days)
	engine.Attribute = s.cfg.Source.Attribute
	return engine.PredictPeakHours(ctx, stationID, s.now())
}

// publishAlerts sends one alert per urgent recommendation.
func (s *Service) publishAlerts(res *Result) {
	if s.alerts == nil {
		return
	}
	for _, rec := range res.Recommendations.Urgent {
		alert := coremqtt.Alert{
			RunID:      res.RunID,
			Problem:    string(rec.Problem),
			Count:      rec.Count,
			Message:    rec.Message,
			StationIDs: res.Problems.IDs(rec.Problem),
			Timestamp:  res.Time,
		}
		if _, err := s.alerts.PublishAlert(alert); err != nil {
			s.log.Errorf("publish alert %s: %v", rec.Problem, err)
			monitoring.CaptureException(err, map[string]string{"run_id": res.RunID, "stage": "alerts"})
		}
	}
}

// trigger runs an analysis in the background, used by MQTT run requests.
func (s *Service) trigger() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Errorf("triggered run: %v", err)
		}
	}()
}

// Run schedules RunOnce according to the cron expression, serves the API
// and the Prometheus endpoint, and blocks until the context is cancelled.
// Failed runs are logged; the schedule continues.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{s.log})))
	if _, err := c.AddFunc(s.cfg.Schedule.Cron, func() {
		defer monitoring.Recover(map[string]string{"job": "scheduled_run"})
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Errorf("scheduled run: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.Schedule.Cron, err)
	}
	if s.cfg.API.Address != "" {
		store := apistations.NewStore()
		go store.Follow(ctx, s.runs)
		engine := prediction.NewSourceEngine(s.src, s.cfg.Analysis.PeakWindowDays)
		engine.Attribute = s.cfg.Source.Attribute
		go func() {
			if err := apistations.StartServer(ctx, s.cfg.API.Address, apistations.NewMux(store, engine)); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	if s.cfg.Metrics.PrometheusEnabled() {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.Schedule.RunOnStart == nil || *s.cfg.Schedule.RunOnStart {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Errorf("initial run: %v", err)
		}
	}
	c.Start()
	s.log.Infof("scheduled analysis %q", s.cfg.Schedule.Cron)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	for _, fn := range s.closers {
		fn()
	}
	s.runs.Close()
	return nil
}
