package recommend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/velomagg/core/efficiency"
	"github.com/kilianp07/velomagg/core/model"
)

func score(t *testing.T, stations ...model.Station) []efficiency.Record {
	t.Helper()
	recs, rej := efficiency.NewScorer().Score(stations)
	require.Empty(t, rej)
	return recs
}

func st(id string, avail, free, total int, status string) model.Station {
	return model.Station{ID: id, AvailableBikes: avail, FreeSlots: free, TotalSlots: total, Status: status}
}

func TestRecommendScenarioUrgent(t *testing.T) {
	recs := score(t,
		st("s1", 0, 5, 10, "working"),
		st("s2", 5, 5, 10, "broken"),
		st("s3", 10, 0, 10, "working"),
	)
	set := Recommend(efficiency.Classify(recs), recs)

	require.Len(t, set.Urgent, 3)
	problems := []efficiency.Category{}
	for _, r := range set.Urgent {
		problems = append(problems, r.Problem)
		assert.Equal(t, 1, r.Count)
		assert.Contains(t, r.Message, "1 stations")
	}
	assert.Equal(t, []efficiency.Category{efficiency.Inactive, efficiency.AlwaysEmpty, efficiency.AlwaysFull}, problems)

	// 1 of 3 low efficiency > 10%
	require.Len(t, set.Maintenance, 1)
	assert.InDelta(t, 1.0/3, set.Maintenance[0].Value, 1e-12)
	// s3 is undersized
	require.Len(t, set.Capacity, 1)
	assert.Equal(t, efficiency.Undersized, set.Capacity[0].Problem)
	// mean (0.15 + 0.85 + 0.3) / 3 < 0.6
	require.Len(t, set.Deployment, 1)
	assert.InDelta(t, 1.3/3, set.Deployment[0].Value, 1e-9)
	assert.Contains(t, set.Deployment[0].Message, "43.3%")
	assert.Equal(t, 6, set.Len())
	assert.Len(t, set.All(), 6)
}

func TestRecommendHealthyNetworkIsQuiet(t *testing.T) {
	var stations []model.Station
	for i := 0; i < 5; i++ {
		stations = append(stations, st(fmt.Sprintf("s%d", i), 5, 5, 10, "working"))
	}
	recs := score(t, stations...)
	set := Recommend(efficiency.Classify(recs), recs)
	assert.Zero(t, set.Len())
	assert.NotNil(t, set.Urgent)
}

func TestRecommendMaintenanceThresholdIsStrict(t *testing.T) {
	// 10 stations, exactly one low-efficiency station: 1 > 10*0.1 is false
	var stations []model.Station
	for i := 0; i < 9; i++ {
		stations = append(stations, st(fmt.Sprintf("ok%d", i), 5, 5, 10, "working"))
	}
	stations = append(stations, st("low", 0, 9, 10, "working"))
	recs := score(t, stations...)
	set := Recommend(efficiency.Classify(recs), recs)
	assert.Empty(t, set.Maintenance)

	stations = append(stations, st("low2", 0, 9, 10, "working"))
	recs = score(t, stations...)
	set = Recommend(efficiency.Classify(recs), recs)
	assert.Len(t, set.Maintenance, 1)
}

func TestRecommendEmptyNetwork(t *testing.T) {
	set := Recommend(efficiency.Classify(nil), nil)
	assert.Zero(t, set.Len())
}

func TestByCategory(t *testing.T) {
	set := Set{Capacity: []Recommendation{{Message: "x"}}}
	assert.Len(t, set.ByCategory(Capacity), 1)
	assert.Nil(t, set.ByCategory(Category("other")))
}
