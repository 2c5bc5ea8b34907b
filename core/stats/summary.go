// Package stats computes descriptive statistics over a network snapshot and
// over a single station's availability history.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/velomagg/core/model"
)

// General holds network-wide totals.
type General struct {
	TotalStations    int     `json:"total_stations"`
	WorkingStations  int     `json:"working_stations"`
	TotalBikes       int     `json:"total_bikes"`
	TotalCapacity    int     `json:"total_capacity"`
	AverageOccupancy float64 `json:"average_occupancy"`
	MedianOccupancy  float64 `json:"median_occupancy"`
}

// Distribution describes one per-station quantity.
type Distribution struct {
	Mean      float64            `json:"mean"`
	Std       float64            `json:"std"`
	Min       float64            `json:"min"`
	Max       float64            `json:"max"`
	Quartiles map[string]float64 `json:"quartiles,omitempty"`
}

// Extremes are the stations at the ends of occupancy and capacity.
type Extremes struct {
	MostOccupied    model.Station `json:"most_occupied"`
	LeastOccupied   model.Station `json:"least_occupied"`
	LargestStation  model.Station `json:"largest_station"`
	SmallestStation model.Station `json:"smallest_station"`
}

// Summary is the statistical report of one snapshot.
type Summary struct {
	General            General      `json:"general"`
	BikesPerStation    Distribution `json:"bikes_per_station"`
	CapacityPerStation Distribution `json:"capacity_per_station"`
	Extremes           Extremes     `json:"extremes"`
}

// Summarize computes the summary. Stations must have their rates derived.
// An empty snapshot yields a zero Summary.
func Summarize(stations []model.Station) Summary {
	var s Summary
	n := len(stations)
	if n == 0 {
		return s
	}
	bikes := make([]float64, n)
	capacity := make([]float64, n)
	occupancy := make([]float64, n)
	for i, st := range stations {
		bikes[i] = float64(st.AvailableBikes)
		capacity[i] = float64(st.TotalSlots)
		occupancy[i] = st.OccupancyRate
		s.General.TotalBikes += st.AvailableBikes
		s.General.TotalCapacity += st.TotalSlots
		if st.Working() {
			s.General.WorkingStations++
		}
	}
	s.General.TotalStations = n
	s.General.AverageOccupancy = stat.Mean(occupancy, nil)
	s.General.MedianOccupancy = Quantile(occupancy, 0.5)

	s.BikesPerStation = distribution(bikes)
	s.BikesPerStation.Quartiles = map[string]float64{
		"0.25": Quantile(bikes, 0.25),
		"0.5":  Quantile(bikes, 0.5),
		"0.75": Quantile(bikes, 0.75),
	}
	s.CapacityPerStation = distribution(capacity)

	s.Extremes = Extremes{
		MostOccupied:    stations[argBest(occupancy, greater)],
		LeastOccupied:   stations[argBest(occupancy, less)],
		LargestStation:  stations[argBest(capacity, greater)],
		SmallestStation: stations[argBest(capacity, less)],
	}
	return s
}

func distribution(x []float64) Distribution {
	d := Distribution{Mean: stat.Mean(x, nil), Min: math.Inf(1), Max: math.Inf(-1)}
	if len(x) > 1 {
		d.Std = stat.StdDev(x, nil)
	}
	for _, v := range x {
		d.Min = math.Min(d.Min, v)
		d.Max = math.Max(d.Max, v)
	}
	return d
}

func greater(a, b float64) bool { return a > b }
func less(a, b float64) bool    { return a < b }

// argBest returns the index of the first element that beats every other
// according to better.
func argBest(x []float64, better func(a, b float64) bool) int {
	best := 0
	for i := 1; i < len(x); i++ {
		if better(x[i], x[best]) {
			best = i
		}
	}
	return best
}

// Quantile returns the p-quantile of x using linear interpolation between
// the closest ranks, (n-1)*p. x is not modified. It returns 0 for empty input.
func Quantile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
