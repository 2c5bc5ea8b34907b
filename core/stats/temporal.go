package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/velomagg/core/model"
)

// HourStats aggregates availability for one hour of day.
type HourStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// DayStats aggregates availability for one weekday.
type DayStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Trends summarises the series direction and its extreme hours.
type Trends struct {
	// Slope is the least-squares change in available bikes per sample.
	Slope float64 `json:"overall_trend"`
	// PeakHour has the lowest mean availability, i.e. the most bikes taken.
	PeakHour int `json:"peak_hour"`
	// LowHour has the highest mean availability.
	LowHour int `json:"low_hour"`
}

// Temporal is the temporal pattern analysis of one series.
type Temporal struct {
	Samples int                 `json:"samples"`
	Hourly  map[int]HourStats   `json:"hourly_patterns"`
	Daily   map[string]DayStats `json:"daily_patterns"` // keyed by weekday name
	Trends  Trends              `json:"trends"`
}

// Empty reports whether there was no data to analyse.
func (t Temporal) Empty() bool { return t.Samples == 0 }

// TemporalPatterns groups availability by hour and by weekday. NaN samples
// are ignored; an empty series yields an empty result.
func TemporalPatterns(samples []model.Sample) Temporal {
	byHour := map[int][]float64{}
	byDay := map[string][]float64{}
	var xs, ys []float64
	for _, s := range samples {
		if math.IsNaN(s.AvailableBikes) {
			continue
		}
		h := s.Timestamp.Hour()
		d := s.Timestamp.Weekday().String()
		byHour[h] = append(byHour[h], s.AvailableBikes)
		byDay[d] = append(byDay[d], s.AvailableBikes)
		xs = append(xs, float64(len(xs)))
		ys = append(ys, s.AvailableBikes)
	}
	if len(ys) == 0 {
		return Temporal{}
	}

	t := Temporal{
		Samples: len(ys),
		Hourly:  make(map[int]HourStats, len(byHour)),
		Daily:   make(map[string]DayStats, len(byDay)),
	}
	for h, v := range byHour {
		d := distribution(v)
		t.Hourly[h] = HourStats{Mean: d.Mean, Std: d.Std, Min: d.Min, Max: d.Max}
	}
	for wd, v := range byDay {
		d := distribution(v)
		t.Daily[wd] = DayStats{Mean: d.Mean, Std: d.Std}
	}
	if len(ys) > 1 {
		_, t.Trends.Slope = stat.LinearRegression(xs, ys, nil, false)
	}

	t.Trends.PeakHour, t.Trends.LowHour = -1, -1
	var lowest, highest float64
	for h := 0; h < 24; h++ {
		hs, ok := t.Hourly[h]
		if !ok {
			continue
		}
		if t.Trends.PeakHour < 0 || hs.Mean < lowest {
			t.Trends.PeakHour, lowest = h, hs.Mean
		}
		if t.Trends.LowHour < 0 || hs.Mean > highest {
			t.Trends.LowHour, highest = h, hs.Mean
		}
	}
	return t
}
