// Package export writes analysis results to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/velomagg/core/efficiency"
)

// CSVHeader lists the columns written by WriteCSV.
var CSVHeader = []string{
	"id", "address", "locality", "available_bikes", "free_slots", "total_slots", "status",
	"latitude", "longitude", "last_update", "occupancy_rate", "utilization_rate",
	"balance_score", "availability_score", "efficiency_score",
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCSV writes one row per scored station.
func WriteCSV(w io.Writer, records []efficiency.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		lastUpdate := ""
		if !r.LastUpdate.IsZero() {
			lastUpdate = r.LastUpdate.Format(time.RFC3339)
		}
		rec := []string{
			r.ID,
			r.Address,
			r.Locality,
			strconv.Itoa(r.AvailableBikes),
			strconv.Itoa(r.FreeSlots),
			strconv.Itoa(r.TotalSlots),
			r.Status,
			formatFloat(r.Latitude),
			formatFloat(r.Longitude),
			lastUpdate,
			formatFloat(r.OccupancyRate),
			formatFloat(r.UtilizationRate),
			formatFloat(r.BalanceScore),
			formatFloat(r.AvailabilityScore),
			formatFloat(r.EfficiencyScore),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
