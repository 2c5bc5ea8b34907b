package app

import (
	"time"

	"github.com/kilianp07/velomagg/core/coverage"
	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/events"
	"github.com/kilianp07/velomagg/core/model"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/core/recommend"
	"github.com/kilianp07/velomagg/core/report"
	"github.com/kilianp07/velomagg/core/stats"
)

// Result gathers everything one analysis run produced.
type Result struct {
	RunID           string
	Time            time.Time
	Duration        time.Duration
	Records         []efficiency.Record
	Rejected        []*model.DataIntegrityError
	Problems        efficiency.ProblemReport
	Coverage        coverage.Report
	Recommendations recommend.Set
	Summary         stats.Summary
	Peaks           []prediction.Report
	Temporal        map[string]stats.Temporal // keyed by station id
}

// ReportInput adapts the result for the text reports.
func (r *Result) ReportInput(title string) report.Input {
	return report.Input{
		Title:           title,
		Summary:         r.Summary,
		Problems:        r.Problems,
		Recommendations: r.Recommendations,
		Records:         r.Records,
	}
}

// Event converts the result to the RunCompleted bus event.
func (r *Result) Event() events.RunCompleted {
	return events.RunCompleted{
		RunID:           r.RunID,
		Time:            r.Time,
		Duration:        r.Duration,
		Records:         r.Records,
		Problems:        r.Problems,
		Coverage:        r.Coverage,
		Recommendations: r.Recommendations,
		Summary:         r.Summary,
		Peaks:           r.Peaks,
		Rejected:        len(r.Rejected),
	}
}
