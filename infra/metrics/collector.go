package metrics

import (
	"github.com/kilianp07/velomagg/core/events"
	coremetrics "github.com/kilianp07/velomagg/core/metrics"
)

// Collect records a run event in every recorder the sink implements.
// Unknown events are ignored.
func Collect(sink coremetrics.MetricsSink, ev any) error {
	switch e := ev.(type) {
	case events.RunCompleted:
		run := coremetrics.RunInfo{RunID: e.RunID, Time: e.Time}
		if err := sink.RecordEfficiency(run, e.Records); err != nil {
			return err
		}
		if r, ok := sink.(coremetrics.ProblemRecorder); ok {
			if err := r.RecordProblems(run, e.Problems); err != nil {
				return err
			}
		}
		if r, ok := sink.(coremetrics.CoverageRecorder); ok {
			if err := r.RecordCoverage(run, e.Coverage); err != nil {
				return err
			}
		}
		if r, ok := sink.(coremetrics.SummaryRecorder); ok {
			if err := r.RecordSummary(run, e.Summary); err != nil {
				return err
			}
		}
		if r, ok := sink.(coremetrics.PeakRecorder); ok {
			if err := r.RecordPeaks(run, e.Peaks); err != nil {
				return err
			}
		}
		if r, ok := sink.(coremetrics.RunRecorder); ok {
			return r.RecordRun(coremetrics.RunEvent{
				RunInfo:  run,
				Duration: e.Duration,
				Success:  true,
				Stations: len(e.Records),
				Rejected: e.Rejected,
			})
		}
	case events.RunFailed:
		if r, ok := sink.(coremetrics.RunRecorder); ok {
			return r.RecordRun(coremetrics.RunEvent{RunInfo: coremetrics.RunInfo{RunID: e.RunID, Time: e.Time}})
		}
	}
	return nil
}
