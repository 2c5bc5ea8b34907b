// Package montpellier reads the Velomagg network from the Montpellier
// Mediterranee Metropole open data API.
package montpellier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kilianp07/velomagg/config"
	"github.com/kilianp07/velomagg/core/model"
	"github.com/kilianp07/velomagg/core/source"
	"github.com/kilianp07/velomagg/infra/logger"
)

const (
	stationsPath   = "/bikestation"
	timeseriesPath = "/bikestation_timeseries"
	queryLayout    = "2006-01-02T15:04:05"
)

// Client implements source.DataSource over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

var _ source.DataSource = (*Client)(nil)

// NewClient creates a client for the configured API.
func NewClient(cfg config.SourceConfig) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout()},
		log:     logger.New("montpellier-source"),
	}
}

// FetchStations returns the current snapshot of every station. Rates are
// derived when the counts are consistent; inconsistent stations are returned
// as is and rejected later by scoring.
func (c *Client) FetchStations(ctx context.Context) ([]model.Station, error) {
	var entities []stationEntity
	if err := c.get(ctx, c.baseURL+stationsPath, &entities); err != nil {
		return nil, err
	}
	stations := make([]model.Station, 0, len(entities))
	for _, e := range entities {
		st := e.toStation()
		if derived, err := st.Derive(); err == nil {
			st = derived
		}
		stations = append(stations, st)
	}
	c.log.Debugf("fetched %d stations", len(stations))
	return stations, nil
}

// FetchTimeSeries returns the history of attr for one station between from
// and to. Null values become NaN samples.
func (c *Client) FetchTimeSeries(ctx context.Context, stationID, attr string, from, to time.Time) ([]model.Sample, error) {
	q := url.Values{}
	q.Set("fromDate", from.Format(queryLayout))
	q.Set("toDate", to.Format(queryLayout))
	u := fmt.Sprintf("%s%s/%s/attrs/%s?%s", c.baseURL, timeseriesPath,
		url.PathEscape(stationID), url.PathEscape(attr), q.Encode())

	var ts timeSeries
	if err := c.get(ctx, u, &ts); err != nil {
		return nil, err
	}
	if len(ts.Index) != len(ts.Values) {
		return nil, fmt.Errorf("%w: series %s has %d timestamps for %d values",
			source.ErrSourceUnavailable, stationID, len(ts.Index), len(ts.Values))
	}
	samples := make([]model.Sample, 0, len(ts.Index))
	for i, raw := range ts.Index {
		t, err := parseTimestamp(raw)
		if err != nil {
			c.log.Warnf("station %s: skipping sample %d: %v", stationID, i, err)
			continue
		}
		v := math.NaN()
		if ts.Values[i] != nil {
			v = *ts.Values[i]
		}
		samples = append(samples, model.Sample{Timestamp: t, AvailableBikes: v})
	}
	c.log.Debugf("fetched %d samples for %s", len(samples), stationID)
	return samples, nil
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", source.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: GET %s: %s: %s", source.ErrSourceUnavailable, req.URL.Path, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", source.ErrSourceUnavailable, req.URL.Path, err)
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	queryLayout,
}

// parseTimestamp accepts ISO 8601 with or without a zone; zoneless values
// are taken as UTC.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
