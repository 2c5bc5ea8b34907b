package stations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/velomagg/core/coverage"
	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/events"
	"github.com/kilianp07/velomagg/core/model"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/core/recommend"
	"github.com/kilianp07/velomagg/internal/eventbus"
)

func runEvent(t *testing.T) events.RunCompleted {
	t.Helper()
	stations := []model.Station{
		{ID: "s1", AvailableBikes: 0, FreeSlots: 5, TotalSlots: 10, Status: "working", Latitude: 43.600, Longitude: 3.88},
		{ID: "s2", AvailableBikes: 5, FreeSlots: 5, TotalSlots: 10, Status: "broken", Latitude: 43.603, Longitude: 3.88},
		{ID: "s3", AvailableBikes: 10, FreeSlots: 0, TotalSlots: 10, Status: "working", Latitude: 43.610, Longitude: 3.88},
	}
	recs, rej := efficiency.NewScorer().Score(stations)
	require.Empty(t, rej)
	problems := efficiency.Classify(recs)
	derived := make([]model.Station, len(recs))
	for i, r := range recs {
		derived[i] = r.Station
	}
	return events.RunCompleted{
		RunID:           "run-1",
		Records:         recs,
		Problems:        problems,
		Coverage:        coverage.NewAnalyzer(0.5).Analyze(derived),
		Recommendations: recommend.Recommend(problems, recs),
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestUnavailableBeforeFirstRun(t *testing.T) {
	mux := NewMux(NewStore(), nil)
	for _, path := range []string{"/api/stations", "/api/problems", "/api/coverage", "/api/recommendations"} {
		assert.Equal(t, http.StatusServiceUnavailable, get(t, mux, path).Code, path)
	}
}

func TestStationsHandler(t *testing.T) {
	store := NewStore()
	store.Set(runEvent(t))
	mux := NewMux(store, nil)

	rr := get(t, mux, "/api/stations")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var all []efficiency.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Len(t, all, 3)

	rr = get(t, mux, "/api/stations?category=inactive")
	require.Equal(t, http.StatusOK, rr.Code)
	var inactive []efficiency.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &inactive))
	require.Len(t, inactive, 1)
	assert.Equal(t, "s2", inactive[0].ID)

	rr = get(t, mux, "/api/stations?category=oversized")
	assert.JSONEq(t, "[]", rr.Body.String())

	assert.Equal(t, http.StatusBadRequest, get(t, mux, "/api/stations?category=bogus").Code)
}

func TestProblemsHandler(t *testing.T) {
	store := NewStore()
	store.Set(runEvent(t))
	rr := get(t, NewMux(store, nil), "/api/problems")
	require.Equal(t, http.StatusOK, rr.Code)

	var out ProblemsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "run-1", out.RunID)
	assert.Len(t, out.Counts, len(efficiency.Categories))
	assert.Equal(t, 1, out.Counts[efficiency.AlwaysEmpty])
	assert.Equal(t, []string{"s3"}, out.Stations[efficiency.AlwaysFull])
	assert.Equal(t, []string{}, out.Stations[efficiency.Oversized])
}

func TestCoverageAndRecommendations(t *testing.T) {
	store := NewStore()
	store.Set(runEvent(t))
	mux := NewMux(store, nil)

	var cov coverage.Report
	require.NoError(t, json.Unmarshal(get(t, mux, "/api/coverage").Body.Bytes(), &cov))
	assert.Equal(t, 6, cov.PairCount)

	var recs RecommendationsResponse
	require.NoError(t, json.Unmarshal(get(t, mux, "/api/recommendations").Body.Bytes(), &recs))
	require.NotEmpty(t, recs.Recommendations)
	assert.Equal(t, recommend.Urgent, recs.Recommendations[0].Category)
}

func TestPeaksHandler(t *testing.T) {
	engine := &prediction.MockEngine{Reports: map[string]prediction.Report{
		"urn:s1": {StationID: "urn:s1", Samples: 48, Forecast: prediction.Forecast{NextWeekdayPeak: 8, NextWeekendPeak: 14}},
	}}
	mux := NewMux(NewStore(), engine)

	rr := get(t, mux, "/api/stations/urn:s1/peaks")
	require.Equal(t, http.StatusOK, rr.Code)
	var rep prediction.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.Equal(t, 8, rep.Forecast.NextWeekdayPeak)

	engine.Err = errors.New("source down")
	assert.Equal(t, http.StatusBadGateway, get(t, mux, "/api/stations/urn:s1/peaks").Code)
}

func TestStoreFollowsBus(t *testing.T) {
	bus := eventbus.NewTyped[events.RunCompleted]()
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Follow(ctx, bus)
		close(done)
	}()

	bus.Publish(events.RunCompleted{RunID: "r7"})
	assert.Eventually(t, func() bool {
		ev, ok := store.Latest()
		return ok && ev.RunID == "r7"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}
