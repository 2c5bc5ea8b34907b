// Package geo provides great-circle helpers for station coordinates.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres between two
// points given in degrees. Invalid coordinates propagate as NaN.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	lon1, lat1, lon2, lat2 = radians(lon1), radians(lat1), radians(lon2), radians(lat2)
	dLon := lon2 - lon1
	dLat := lat2 - lat1
	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	// rounding can push a slightly above 1 for antipodal points
	return 2 * math.Asin(math.Min(1, math.Sqrt(a))) * EarthRadiusKm
}

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }
