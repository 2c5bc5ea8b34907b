// Package efficiency scores stations and sorts them into problem categories.
//
// Scores are a fixed weighted composite of three signals: how close the
// station is to half full (balance), whether it can both lend and accept a
// bike (availability) and how many of its docks are occupied (utilization).
package efficiency

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/velomagg/core/model"
)

// Default composite weights.
const (
	BalanceWeight      = 0.4
	AvailabilityWeight = 0.3
	UtilizationWeight  = 0.3
)

// Record is a station together with its derived scores.
type Record struct {
	model.Station
	BalanceScore      float64 `json:"balance_score"`
	AvailabilityScore float64 `json:"availability_score"`
	EfficiencyScore   float64 `json:"efficiency_score"`
}

// Scorer computes efficiency records. The zero value is not usable; use
// NewScorer for the default weights.
type Scorer struct {
	BalanceWeight      float64
	AvailabilityWeight float64
	UtilizationWeight  float64
}

// NewScorer returns a Scorer with the default weights.
func NewScorer() Scorer {
	return Scorer{
		BalanceWeight:      BalanceWeight,
		AvailabilityWeight: AvailabilityWeight,
		UtilizationWeight:  UtilizationWeight,
	}
}

// BalanceScore is 1 at 50% occupancy and falls linearly to 0 at 0% or 100%.
func BalanceScore(occupancy float64) float64 {
	return 1 - math.Abs(occupancy-0.5)*2
}

// AvailabilityScore is 0 when the station is empty or full, 1 otherwise.
func AvailabilityScore(availableBikes, freeSlots int) float64 {
	if availableBikes == 0 || freeSlots == 0 {
		return 0
	}
	return 1
}

// ScoreStation derives the record for a single station. The rates are
// recomputed from the capacity fields so a caller cannot feed stale values.
func (s Scorer) ScoreStation(st model.Station) (Record, error) {
	d, err := st.Derive()
	if err != nil {
		return Record{}, err
	}
	r := Record{Station: d}
	r.BalanceScore = BalanceScore(d.OccupancyRate)
	r.AvailabilityScore = AvailabilityScore(d.AvailableBikes, d.FreeSlots)
	r.EfficiencyScore = r.BalanceScore*s.BalanceWeight +
		r.AvailabilityScore*s.AvailabilityWeight +
		d.UtilizationRate*s.UtilizationWeight
	return r, nil
}

// Score returns one record per valid station, in input order. Stations that
// cannot be scored are skipped and reported in the second return value; the
// batch is never aborted.
func (s Scorer) Score(stations []model.Station) ([]Record, []*model.DataIntegrityError) {
	records := make([]Record, 0, len(stations))
	var rejected []*model.DataIntegrityError
	for _, st := range stations {
		r, err := s.ScoreStation(st)
		if err != nil {
			var die *model.DataIntegrityError
			if !errors.As(err, &die) {
				die = &model.DataIntegrityError{StationID: st.ID, Reason: err.Error()}
			}
			rejected = append(rejected, die)
			continue
		}
		records = append(records, r)
	}
	return records, rejected
}

// MeanEfficiency returns the average efficiency score, or 0 for no records.
func MeanEfficiency(records []Record) float64 {
	if len(records) == 0 {
		return 0
	}
	scores := make([]float64, len(records))
	for i, r := range records {
		scores[i] = r.EfficiencyScore
	}
	return stat.Mean(scores, nil)
}
