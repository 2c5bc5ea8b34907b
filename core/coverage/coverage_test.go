package coverage

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/velomagg/core/model"
)

// Three stations on the same meridian: A-B 0.334 km, B-C 0.778 km, A-C 1.112 km.
func meridianLayout() []model.Station {
	return []model.Station{
		{ID: "A", Longitude: 3.88, Latitude: 43.600},
		{ID: "B", Longitude: 3.88, Latitude: 43.603},
		{ID: "C", Longitude: 3.88, Latitude: 43.610},
	}
}

func TestAnalyzeThreeStations(t *testing.T) {
	rep := NewAnalyzer(0.5).Analyze(meridianLayout())
	require.Len(t, rep.Zones, 3)

	nearby := map[string]int{}
	for _, z := range rep.Zones {
		nearby[z.StationID] = z.NearbyStations
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 0}, nearby)

	require.Len(t, rep.Isolated, 1)
	assert.Equal(t, "C", rep.Isolated[0].StationID)
	assert.Empty(t, rep.Dense)

	assert.Equal(t, 6, rep.PairCount)
	assert.InDelta(t, 0.741300, rep.AverageDistance, 1e-5)
	assert.InDelta(t, 0.333585, rep.MinDistance, 1e-5)

	assert.InDelta(t, 1/(math.Pi*0.25), rep.Zones[0].Density, 1e-9)
	assert.InDelta(t, 0.848826, rep.MeanDensity, 1e-5)
	assert.InDelta(t, 0.735105, rep.StdDensity, 1e-5)
}

func TestAnalyzeRadiusChangesNeighbourhood(t *testing.T) {
	rep := NewAnalyzer(2).Analyze(meridianLayout())
	for _, z := range rep.Zones {
		assert.Equal(t, 2, z.NearbyStations, z.StationID)
	}
	assert.Empty(t, rep.Isolated)
}

func TestAnalyzeDenseArea(t *testing.T) {
	var stations []model.Station
	for i := 0; i < 7; i++ {
		stations = append(stations, model.Station{
			ID:        fmt.Sprintf("s%d", i),
			Longitude: 3.88 + float64(i)*0.0005,
			Latitude:  43.60,
		})
	}
	rep := NewAnalyzer(0.5).Analyze(stations)
	// 7 stations within ~0.25 km: each has 6 neighbours
	assert.Len(t, rep.Dense, 7)
	assert.InDelta(t, 0, rep.StdDensity, 1e-12)
}

func TestAnalyzeDegenerateInputs(t *testing.T) {
	empty := NewAnalyzer(0).Analyze(nil)
	assert.Equal(t, DefaultRadiusKm, empty.RadiusKm)
	assert.Zero(t, empty.PairCount)
	assert.Empty(t, empty.Zones)
	assert.Zero(t, empty.AverageDistance)

	single := NewAnalyzer(0.5).Analyze(meridianLayout()[:1])
	require.Len(t, single.Isolated, 1)
	assert.Zero(t, single.PairCount)
	assert.Zero(t, single.MeanDensity)
}
