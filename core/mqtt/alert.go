// Package mqtt defines how operational alerts leave the analytics service.
package mqtt

import "time"

// Alert is the payload published for each urgent recommendation.
type Alert struct {
	AlertID    string    `json:"alert_id"`
	RunID      string    `json:"run_id"`
	Problem    string    `json:"problem"`
	Count      int       `json:"count"`
	Message    string    `json:"message"`
	StationIDs []string  `json:"station_ids"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher sends alerts to operators.
type Publisher interface {
	// PublishAlert delivers the alert and returns its identifier.
	PublishAlert(alert Alert) (alertID string, err error)
}
