// Package source defines how the analytics obtain station snapshots and
// availability time series from an external provider.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/velomagg/core/model"
)

// AttrAvailableBikes is the time series attribute holding bike availability.
const AttrAvailableBikes = "availableBikeNumber"

// ErrSourceUnavailable is returned when the provider cannot be reached or
// answers with an error. A run hitting it is abandoned; there is no retry.
var ErrSourceUnavailable = errors.New("source unavailable")

// DataSource retrieves raw data for one analysis run.
type DataSource interface {
	// FetchStations returns the current network state. An empty slice is a
	// valid answer.
	FetchStations(ctx context.Context) ([]model.Station, error)

	// FetchTimeSeries returns the samples of attr for the station between
	// from and to. The slice may be empty.
	FetchTimeSeries(ctx context.Context, stationID, attr string, from, to time.Time) ([]model.Sample, error)
}

// Static serves fixed data. It is used for offline runs and tests.
type Static struct {
	Stations []model.Station
	// Series is keyed by station ID; the time range is applied on read.
	Series map[string][]model.Sample
	Err    error
}

// FetchStations returns a copy of the configured stations.
func (s *Static) FetchStations(ctx context.Context) ([]model.Station, error) {
	_ = ctx
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Station, len(s.Stations))
	copy(out, s.Stations)
	return out, nil
}

// FetchTimeSeries returns the configured samples within [from, to].
func (s *Static) FetchTimeSeries(ctx context.Context, stationID, attr string, from, to time.Time) ([]model.Sample, error) {
	_, _ = ctx, attr
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Sample
	for _, smp := range s.Series[stationID] {
		if smp.Timestamp.Before(from) || smp.Timestamp.After(to) {
			continue
		}
		out = append(out, smp)
	}
	return out, nil
}
