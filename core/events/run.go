package events

import (
	"time"

	"github.com/kilianp07/velomagg/core/coverage"
	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/core/recommend"
	"github.com/kilianp07/velomagg/core/stats"
)

// RunCompleted carries every result of one analysis run.
type RunCompleted struct {
	RunID           string
	Time            time.Time
	Duration        time.Duration
	Records         []efficiency.Record
	Problems        efficiency.ProblemReport
	Coverage        coverage.Report
	Recommendations recommend.Set
	Summary         stats.Summary
	Peaks           []prediction.Report
	// Rejected counts stations skipped for inconsistent data.
	Rejected int
}

// RunFailed is published when a run aborts before producing results.
type RunFailed struct {
	RunID string
	Time  time.Time
	Err   error
}
