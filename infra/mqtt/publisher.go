package mqtt

import (
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/velomagg/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher records alerts in memory. It is used in tests and when no
// broker is configured but alerts should still be inspected.
type MockPublisher struct {
	mu       sync.Mutex
	Alerts   []coremqtt.Alert
	FailWith map[string]bool // problem -> fail
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailWith: make(map[string]bool)}
}

// PublishAlert records the alert or fails when its problem is configured to.
func (m *MockPublisher) PublishAlert(alert coremqtt.Alert) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith[alert.Problem] {
		return "", fmt.Errorf("%w: %s", coremqtt.ErrPublish, alert.Problem)
	}
	if alert.AlertID == "" {
		alert.AlertID = fmt.Sprintf("alert-%d", len(m.Alerts)+1)
	}
	m.Alerts = append(m.Alerts, alert)
	return alert.AlertID, nil
}

// Published returns a copy of the recorded alerts.
func (m *MockPublisher) Published() []coremqtt.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.Alert(nil), m.Alerts...)
}
