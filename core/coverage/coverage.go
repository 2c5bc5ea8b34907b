// Package coverage measures how densely stations cover the network area.
//
// Analyze compares every station with every other one, so its cost is
// O(n²) in the number of stations. This is fine for networks of a few
// hundred stations; larger networks would need a spatial index to bound the
// neighbour search, while the distance statistics still require every pair.
package coverage

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/velomagg/core/geo"
	"github.com/kilianp07/velomagg/core/model"
)

const (
	// DefaultRadiusKm is the neighbourhood radius used when none is given.
	DefaultRadiusKm = 0.5
	// DenseThreshold is the neighbour count above which a station is in a dense area.
	DenseThreshold = 5
)

// Zone is the neighbourhood of one station.
type Zone struct {
	StationID      string  `json:"station_id"`
	Address        string  `json:"address"`
	NearbyStations int     `json:"nearby_stations"`
	Density        float64 `json:"coverage_density"` // neighbours per km²
}

// Report is the network-wide coverage analysis.
type Report struct {
	RadiusKm float64 `json:"radius_km"`
	Zones    []Zone  `json:"zones"`

	// Distance statistics are computed over ordered pairs (i, j), i != j, so
	// each unordered pair is counted twice. The mean and minimum are the same
	// as over unordered pairs; only the sample count doubles.
	AverageDistance float64 `json:"average_distance"`
	MinDistance     float64 `json:"min_distance"`
	PairCount       int     `json:"pair_count"`

	Isolated []Zone `json:"isolated_stations"`
	Dense    []Zone `json:"dense_areas"`

	MeanDensity float64 `json:"mean_density"`
	StdDensity  float64 `json:"std_density"`
}

// Analyzer computes coverage reports.
type Analyzer struct {
	RadiusKm       float64
	DenseThreshold int
}

// NewAnalyzer returns an Analyzer for the given radius. A non-positive radius
// selects DefaultRadiusKm.
func NewAnalyzer(radiusKm float64) Analyzer {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return Analyzer{RadiusKm: radiusKm, DenseThreshold: DenseThreshold}
}

// Analyze builds the coverage report for the stations. Statistics without a
// sample (fewer than two stations) are left at zero and PairCount is zero.
func (a Analyzer) Analyze(stations []model.Station) Report {
	rep := Report{
		RadiusKm: a.RadiusKm,
		Zones:    make([]Zone, 0, len(stations)),
		Isolated: []Zone{},
		Dense:    []Zone{},
	}
	area := math.Pi * a.RadiusKm * a.RadiusKm
	pairs := 0
	if n := len(stations); n > 1 {
		pairs = n * (n - 1)
	}
	distances := make([]float64, 0, pairs)
	densities := make([]float64, 0, len(stations))

	for i, s1 := range stations {
		nearby := 0
		for j, s2 := range stations {
			if i == j {
				continue
			}
			d := geo.Haversine(s1.Longitude, s1.Latitude, s2.Longitude, s2.Latitude)
			if d <= a.RadiusKm {
				nearby++
			}
			distances = append(distances, d)
		}
		z := Zone{
			StationID:      s1.ID,
			Address:        s1.Address,
			NearbyStations: nearby,
			Density:        float64(nearby) / area,
		}
		rep.Zones = append(rep.Zones, z)
		densities = append(densities, z.Density)
		if nearby == 0 {
			rep.Isolated = append(rep.Isolated, z)
		}
		if nearby > a.DenseThreshold {
			rep.Dense = append(rep.Dense, z)
		}
	}

	rep.PairCount = len(distances)
	if len(distances) > 0 {
		rep.AverageDistance = stat.Mean(distances, nil)
		rep.MinDistance = floats.Min(distances)
	}
	switch len(densities) {
	case 0:
	case 1:
		rep.MeanDensity = densities[0]
	default:
		// sample standard deviation (n-1)
		rep.MeanDensity, rep.StdDensity = stat.MeanStdDev(densities, nil)
	}
	return rep
}
