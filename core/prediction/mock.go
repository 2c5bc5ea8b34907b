package prediction

import (
	"context"
	"time"
)

// MockEngine returns preconfigured reports.
type MockEngine struct {
	Reports map[string]Report
	Err     error
}

// PredictPeakHours returns the configured report for the station, or an
// empty report for unknown stations.
func (m MockEngine) PredictPeakHours(_ context.Context, id string, _ time.Time) (Report, error) {
	if m.Err != nil {
		return Report{}, m.Err
	}
	return m.Reports[id], nil
}
