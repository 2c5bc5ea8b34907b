package stations

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/events"
	"github.com/kilianp07/velomagg/core/prediction"
	"github.com/kilianp07/velomagg/core/recommend"
)

// ProblemsResponse is the body of GET /api/problems.
type ProblemsResponse struct {
	RunID    string                           `json:"run_id"`
	Counts   map[efficiency.Category]int      `json:"counts"`
	Stations map[efficiency.Category][]string `json:"stations"`
}

// RecommendationsResponse is the body of GET /api/recommendations.
type RecommendationsResponse struct {
	RunID           string                     `json:"run_id"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// NewMux registers every analysis endpoint. engine may be nil, in which
// case the peaks endpoint is not served.
func NewMux(store *Store, engine prediction.Engine) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /api/stations", NewStationsHandler(store))
	mux.Handle("GET /api/problems", NewProblemsHandler(store))
	mux.Handle("GET /api/coverage", NewCoverageHandler(store))
	mux.Handle("GET /api/recommendations", NewRecommendationsHandler(store))
	if engine != nil {
		mux.Handle("GET /api/stations/{id}/peaks", NewPeaksHandler(engine))
	}
	return mux
}

// withLatest answers 503 until a run has completed.
func withLatest(store *Store, fn func(w http.ResponseWriter, r *http.Request, ev events.RunCompleted)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ev, ok := store.Latest()
		if !ok {
			http.Error(w, "no analysis available yet", http.StatusServiceUnavailable)
			return
		}
		fn(w, r, ev)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// NewStationsHandler serves the scored stations via GET /api/stations.
// The optional category query parameter keeps the stations of one problem
// category.
func NewStationsHandler(store *Store) http.Handler {
	return withLatest(store, func(w http.ResponseWriter, r *http.Request, ev events.RunCompleted) {
		records := ev.Records
		if c := r.URL.Query().Get("category"); c != "" {
			cat := efficiency.Category(c)
			if !knownCategory(cat) {
				http.Error(w, "unknown category "+c, http.StatusBadRequest)
				return
			}
			records = ev.Problems[cat]
		}
		if records == nil {
			records = []efficiency.Record{}
		}
		writeJSON(w, records)
	})
}

func knownCategory(c efficiency.Category) bool {
	for _, k := range efficiency.Categories {
		if k == c {
			return true
		}
	}
	return false
}

// NewProblemsHandler serves category counts and station ids via GET /api/problems.
func NewProblemsHandler(store *Store) http.Handler {
	return withLatest(store, func(w http.ResponseWriter, _ *http.Request, ev events.RunCompleted) {
		resp := ProblemsResponse{
			RunID:    ev.RunID,
			Counts:   make(map[efficiency.Category]int, len(efficiency.Categories)),
			Stations: make(map[efficiency.Category][]string, len(efficiency.Categories)),
		}
		for _, c := range efficiency.Categories {
			resp.Counts[c] = ev.Problems.Count(c)
			ids := ev.Problems.IDs(c)
			if ids == nil {
				ids = []string{}
			}
			resp.Stations[c] = ids
		}
		writeJSON(w, resp)
	})
}

// NewCoverageHandler serves the coverage report via GET /api/coverage.
func NewCoverageHandler(store *Store) http.Handler {
	return withLatest(store, func(w http.ResponseWriter, _ *http.Request, ev events.RunCompleted) {
		writeJSON(w, ev.Coverage)
	})
}

// NewRecommendationsHandler serves the ordered recommendations via
// GET /api/recommendations.
func NewRecommendationsHandler(store *Store) http.Handler {
	return withLatest(store, func(w http.ResponseWriter, _ *http.Request, ev events.RunCompleted) {
		recs := ev.Recommendations.All()
		if recs == nil {
			recs = []recommend.Recommendation{}
		}
		writeJSON(w, RecommendationsResponse{RunID: ev.RunID, Recommendations: recs})
	})
}

// NewPeaksHandler predicts the peak hours of one station via
// GET /api/stations/{id}/peaks. An empty report means no history.
func NewPeaksHandler(engine prediction.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "missing station id", http.StatusBadRequest)
			return
		}
		rep, err := engine.PredictPeakHours(r.Context(), id, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, rep)
	})
}
