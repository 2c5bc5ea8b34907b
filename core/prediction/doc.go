// Package prediction extracts daily usage peaks from a station's availability
// history. Usage intensity is a proxy for demand: it is the window's highest
// observed availability minus the current availability, so it measures how
// many bikes are missing relative to the fullest state seen, not actual
// trips.
package prediction
