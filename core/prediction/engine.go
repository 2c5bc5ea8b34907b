package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/velomagg/core/source"
)

// DefaultWindowDays is the history length used for peak prediction.
const DefaultWindowDays = 30

// Engine predicts peak hours for a station.
type Engine interface {
	// PredictPeakHours analyses the history ending at now. An empty Report
	// with a nil error means there was not enough data.
	PredictPeakHours(ctx context.Context, stationID string, now time.Time) (Report, error)
}

// SourceEngine reads the station history from a DataSource.
type SourceEngine struct {
	Source     source.DataSource
	WindowDays int
	Attribute  string
}

// NewSourceEngine returns an engine over src. A non-positive window selects
// DefaultWindowDays.
func NewSourceEngine(src source.DataSource, windowDays int) *SourceEngine {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &SourceEngine{Source: src, WindowDays: windowDays, Attribute: source.AttrAvailableBikes}
}

// Window returns the history range ending at now.
func (e *SourceEngine) Window(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -e.WindowDays), now
}

// PredictPeakHours fetches the window and runs PredictPeakHours on it.
func (e *SourceEngine) PredictPeakHours(ctx context.Context, stationID string, now time.Time) (Report, error) {
	from, to := e.Window(now)
	samples, err := e.Source.FetchTimeSeries(ctx, stationID, e.Attribute, from, to)
	if err != nil {
		return Report{}, fmt.Errorf("fetch %s history: %w", stationID, err)
	}
	rep := PredictPeakHours(samples)
	if !rep.Empty() {
		rep.StationID = stationID
	}
	return rep, nil
}
