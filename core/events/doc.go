// Package events defines the analysis events emitted on the event bus.
//
// Available event types:
//   - RunCompleted: an analysis run finished with results
//   - RunFailed: an analysis run could not fetch the stations
package events
