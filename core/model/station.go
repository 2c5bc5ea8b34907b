package model

import (
	"math"
	"time"
)

// StatusWorking is the only operational status considered active.
const StatusWorking = "working"

// Station is a snapshot of one bike-share station for a single analysis run.
// OccupancyRate and UtilizationRate are derived once by Derive and must not be
// changed afterwards.
type Station struct {
	ID        string  `json:"id"`
	Address   string  `json:"address"`
	Locality  string  `json:"locality"`
	Latitude  float64 `json:"latitude"`  // WGS84 degrees, NaN when unknown
	Longitude float64 `json:"longitude"` // WGS84 degrees, NaN when unknown

	AvailableBikes int `json:"available_bikes"`
	FreeSlots      int `json:"free_slots"`
	TotalSlots     int `json:"total_slots"`

	Status     string    `json:"status"`
	LastUpdate time.Time `json:"last_update"`

	OccupancyRate   float64 `json:"occupancy_rate"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// Validate reports whether the capacity fields allow the rates to be derived
// and the station can be placed on the map.
func (s Station) Validate() error {
	switch {
	case s.TotalSlots <= 0:
		return &DataIntegrityError{StationID: s.ID, Reason: "total slots must be positive"}
	case s.AvailableBikes < 0:
		return &DataIntegrityError{StationID: s.ID, Reason: "available bikes is negative"}
	case s.FreeSlots < 0:
		return &DataIntegrityError{StationID: s.ID, Reason: "free slots is negative"}
	case s.AvailableBikes > s.TotalSlots:
		// occupancy above 1 would push the balance score below zero
		return &DataIntegrityError{StationID: s.ID, Reason: "available bikes exceed total slots"}
	case s.FreeSlots > s.TotalSlots:
		// utilization below 0
		return &DataIntegrityError{StationID: s.ID, Reason: "free slots exceed total slots"}
	case math.IsNaN(s.Latitude) || math.IsNaN(s.Longitude):
		return &DataIntegrityError{StationID: s.ID, Reason: "missing location"}
	}
	return nil
}

// Derive returns a copy of the station with OccupancyRate and UtilizationRate
// computed from the capacity fields. Stations failing Validate are returned
// unchanged together with the validation error.
func (s Station) Derive() (Station, error) {
	if err := s.Validate(); err != nil {
		return s, err
	}
	total := float64(s.TotalSlots)
	s.OccupancyRate = float64(s.AvailableBikes) / total
	s.UtilizationRate = float64(s.TotalSlots-s.FreeSlots) / total
	return s, nil
}

// Working returns true when the station reports the operational status.
func (s Station) Working() bool { return s.Status == StatusWorking }

// Sample is one point of a station availability time series.
type Sample struct {
	Timestamp      time.Time `json:"timestamp"`
	AvailableBikes float64   `json:"available_bikes"`
}
