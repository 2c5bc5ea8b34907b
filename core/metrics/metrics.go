package metrics

import (
	"time"

	"github.com/kilianp07/velomagg/core/coverage"
	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/core/stats"
)

// RunInfo identifies the analysis run a record belongs to.
type RunInfo struct {
	RunID string
	Time  time.Time
}

// MetricsSink records per-station efficiency scores.
type MetricsSink interface {
	RecordEfficiency(run RunInfo, records []efficiency.Record) error
}

// ProblemRecorder records problem category counts.
type ProblemRecorder interface {
	RecordProblems(run RunInfo, report efficiency.ProblemReport) error
}

// CoverageRecorder records the coverage analysis.
type CoverageRecorder interface {
	RecordCoverage(run RunInfo, report coverage.Report) error
}

// SummaryRecorder records network-wide statistics.
type SummaryRecorder interface {
	RecordSummary(run RunInfo, summary stats.Summary) error
}

// PeakRecorder records peak-hour predictions.
type PeakRecorder interface {
	RecordPeaks(run RunInfo, reports []prediction.Report) error
}

// RunEvent describes the outcome of one run.
type RunEvent struct {
	RunInfo
	Duration time.Duration
	Success  bool
	Stations int
	Rejected int
}

// RunRecorder records run outcomes.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordEfficiency(RunInfo, []efficiency.Record) error    { return nil }
func (NopSink) RecordProblems(RunInfo, efficiency.ProblemReport) error { return nil }
func (NopSink) RecordCoverage(RunInfo, coverage.Report) error          { return nil }
func (NopSink) RecordSummary(RunInfo, stats.Summary) error             { return nil }
func (NopSink) RecordPeaks(RunInfo, []prediction.Report) error         { return nil }
func (NopSink) RecordRun(RunEvent) error                               { return nil }
