package prediction

import (
	"math"
	"sort"
	"time"

	"github.com/kilianp07/velomagg/core/model"
)

// NoPeak marks a peak that cannot be determined from the data.
const NoPeak = -1

// EveningAfterHour bounds the evening peak search: only hours strictly after
// it are considered.
const EveningAfterHour = 12

// HourlyPattern maps an hour of day (0-23) to the mean usage intensity.
// Only hours present in the data have an entry.
type HourlyPattern map[int]float64

// Hours returns the pattern's hours in ascending order.
func (p HourlyPattern) Hours() []int {
	hours := make([]int, 0, len(p))
	for h := range p {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

// Peak returns the hour with the highest mean intensity among hours
// accepted by keep. Ties go to the earliest hour. NoPeak is returned when no
// hour qualifies.
func (p HourlyPattern) Peak(keep func(hour int) bool) int {
	best, bestVal := NoPeak, math.Inf(-1)
	for _, h := range p.Hours() {
		if keep != nil && !keep(h) {
			continue
		}
		if v := p[h]; v > bestVal {
			best, bestVal = h, v
		}
	}
	return best
}

// WeekdayPeaks describes Monday-Friday usage.
type WeekdayPeaks struct {
	MorningPeak int           `json:"morning_peak"`
	EveningPeak int           `json:"evening_peak"`
	Pattern     HourlyPattern `json:"pattern"`
}

// WeekendPeaks describes Saturday-Sunday usage.
type WeekendPeaks struct {
	MainPeak int           `json:"main_peak"`
	Pattern  HourlyPattern `json:"pattern"`
}

// Forecast holds the hours expected to be busiest on the next day of each kind.
type Forecast struct {
	NextWeekdayPeak int `json:"next_weekday_peak"`
	NextWeekendPeak int `json:"next_weekend_peak"`
}

// Report is the peak-hour analysis of one series. The zero Report means the
// series did not contain enough data; check Empty before using it.
type Report struct {
	StationID string       `json:"station_id,omitempty"`
	Samples   int          `json:"samples"`
	Weekday   WeekdayPeaks `json:"weekday_peaks"`
	Weekend   WeekendPeaks `json:"weekend_peaks"`
	Forecast  Forecast     `json:"predictions"`
}

// Empty reports whether the analysis had no usable samples.
func (r Report) Empty() bool { return r.Samples == 0 }

// DayOfWeek returns 0 for Monday through 6 for Sunday.
func DayOfWeek(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool { return DayOfWeek(t) >= 5 }

// PredictPeakHours analyses a single series. Samples with a NaN value are
// ignored; when nothing usable remains an empty Report is returned. Hours are
// taken in each timestamp's own location.
func PredictPeakHours(samples []model.Sample) Report {
	valid := make([]model.Sample, 0, len(samples))
	maxBikes := math.Inf(-1)
	for _, s := range samples {
		if math.IsNaN(s.AvailableBikes) {
			continue
		}
		valid = append(valid, s)
		maxBikes = math.Max(maxBikes, s.AvailableBikes)
	}
	if len(valid) == 0 {
		return Report{}
	}

	var weekday, weekend hourAccumulator
	for _, s := range valid {
		intensity := maxBikes - s.AvailableBikes
		if IsWeekend(s.Timestamp) {
			weekend.add(s.Timestamp.Hour(), intensity)
		} else {
			weekday.add(s.Timestamp.Hour(), intensity)
		}
	}

	wd, we := weekday.pattern(), weekend.pattern()
	rep := Report{
		Samples: len(valid),
		Weekday: WeekdayPeaks{
			MorningPeak: wd.Peak(nil),
			EveningPeak: wd.Peak(func(h int) bool { return h > EveningAfterHour }),
			Pattern:     wd,
		},
		Weekend: WeekendPeaks{
			MainPeak: we.Peak(nil),
			Pattern:  we,
		},
	}
	rep.Forecast = Forecast{NextWeekdayPeak: rep.Weekday.MorningPeak, NextWeekendPeak: rep.Weekend.MainPeak}
	return rep
}

type hourAccumulator struct {
	sum   [24]float64
	count [24]int
}

func (a *hourAccumulator) add(hour int, v float64) {
	a.sum[hour] += v
	a.count[hour]++
}

func (a *hourAccumulator) pattern() HourlyPattern {
	p := HourlyPattern{}
	for h := 0; h < 24; h++ {
		if a.count[h] > 0 {
			p[h] = a.sum[h] / float64(a.count[h])
		}
	}
	return p
}
