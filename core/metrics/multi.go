package metrics

import (
	"errors"

	"github.com/kilianp07/velomagg/core/coverage"
	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/core/stats"
)

// MultiSink fans records out to several sinks. Every sink is attempted and
// the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordEfficiency(run RunInfo, records []efficiency.Record) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordEfficiency(run, records))
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordProblems(run RunInfo, report efficiency.ProblemReport) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ProblemRecorder); ok {
			errs = append(errs, rec.RecordProblems(run, report))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordCoverage(run RunInfo, report coverage.Report) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(CoverageRecorder); ok {
			errs = append(errs, rec.RecordCoverage(run, report))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordSummary(run RunInfo, summary stats.Summary) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(SummaryRecorder); ok {
			errs = append(errs, rec.RecordSummary(run, summary))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordPeaks(run RunInfo, reports []prediction.Report) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(PeakRecorder); ok {
			errs = append(errs, rec.RecordPeaks(run, reports))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordRun(ev RunEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(RunRecorder); ok {
			errs = append(errs, rec.RecordRun(ev))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
