package config

import "fmt"

// AnalysisConfig tunes the analytics of a run.
type AnalysisConfig struct {
	// RadiusKm is the neighbourhood radius of the coverage analysis.
	RadiusKm float64 `json:"radius_km"`
	// DenseThreshold is the neighbour count above which a station is dense.
	DenseThreshold int `json:"dense_threshold"`
	// PeakWindowDays is the history used for peak-hour prediction.
	PeakWindowDays int `json:"peak_window_days"`
	// TemporalWindowDays is the history used for temporal patterns.
	TemporalWindowDays int `json:"temporal_window_days"`
	// SampleStations is how many stations get a peak-hour prediction per run.
	SampleStations int `json:"sample_stations"`
}

// SetDefaults applies sane defaults.
func (c *AnalysisConfig) SetDefaults() {
	if c.RadiusKm == 0 {
		c.RadiusKm = 0.5
	}
	if c.DenseThreshold == 0 {
		c.DenseThreshold = 5
	}
	if c.PeakWindowDays == 0 {
		c.PeakWindowDays = 30
	}
	if c.TemporalWindowDays == 0 {
		c.TemporalWindowDays = 7
	}
	if c.SampleStations == 0 {
		c.SampleStations = 3
	}
}

// Validate checks value ranges.
func (c AnalysisConfig) Validate() error {
	if c.RadiusKm <= 0 {
		return fmt.Errorf("radius_km must be positive")
	}
	if c.DenseThreshold < 0 {
		return fmt.Errorf("dense_threshold must not be negative")
	}
	if c.PeakWindowDays < 1 || c.TemporalWindowDays < 1 {
		return fmt.Errorf("history windows must be at least one day")
	}
	if c.SampleStations < 0 {
		return fmt.Errorf("sample_stations must not be negative")
	}
	return nil
}
