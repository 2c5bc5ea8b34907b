package montpellier

import (
	"math"

	"github.com/kilianp07/velomagg/core/model"
)

// stationEntity is the NGSI representation of a station.
type stationEntity struct {
	ID      string `json:"id"`
	Address struct {
		Value struct {
			StreetAddress   string `json:"streetAddress"`
			AddressLocality string `json:"addressLocality"`
		} `json:"value"`
	} `json:"address"`
	AvailableBikeNumber struct {
		Value    int `json:"value"`
		Metadata struct {
			Timestamp struct {
				Value string `json:"value"`
			} `json:"timestamp"`
		} `json:"metadata"`
	} `json:"availableBikeNumber"`
	FreeSlotNumber  intValue `json:"freeSlotNumber"`
	TotalSlotNumber intValue `json:"totalSlotNumber"`
	Status          struct {
		Value string `json:"value"`
	} `json:"status"`
	Location struct {
		Value struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"value"`
	} `json:"location"`
}

type intValue struct {
	Value int `json:"value"`
}

func (e stationEntity) toStation() model.Station {
	st := model.Station{
		ID:             e.ID,
		Address:        e.Address.Value.StreetAddress,
		Locality:       e.Address.Value.AddressLocality,
		AvailableBikes: e.AvailableBikeNumber.Value,
		FreeSlots:      e.FreeSlotNumber.Value,
		TotalSlots:     e.TotalSlotNumber.Value,
		Status:         e.Status.Value,
		Latitude:       math.NaN(),
		Longitude:      math.NaN(),
	}
	// GeoJSON order is [lon, lat]; a missing point stays NaN for Validate.
	if c := e.Location.Value.Coordinates; len(c) >= 2 {
		st.Longitude, st.Latitude = c[0], c[1]
	}
	if ts := e.AvailableBikeNumber.Metadata.Timestamp.Value; ts != "" {
		if t, err := parseTimestamp(ts); err == nil {
			st.LastUpdate = t
		}
	}
	return st
}

// timeSeries is the body of the time series endpoint.
type timeSeries struct {
	Index  []string   `json:"index"`
	Values []*float64 `json:"values"`
}
