package monitoring

import (
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/velomagg/config"
	coremon "github.com/kilianp07/velomagg/core/monitoring"
)

type eventSpy struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (s *eventSpy) beforeSend(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return nil
}

func TestNewSentryMonitorDisabled(t *testing.T) {
	m, err := NewSentryMonitor(config.MonitoringConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitorInvalidDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.MonitoringConfig{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestSentryMonitorCapturesWithTags(t *testing.T) {
	spy := &eventSpy{}
	m, err := newSentryMonitor(sentry.ClientOptions{
		Dsn:        "https://public@sentry.example.com/1",
		BeforeSend: spy.beforeSend,
	})
	require.NoError(t, err)

	m.CaptureException(errors.New("fetch stations: source unavailable"), map[string]string{"run_id": "r1"})
	m.CaptureException(nil, nil)
	m.CapturePanic("boom", map[string]string{"job": "scheduled_run"})

	spy.mu.Lock()
	defer spy.mu.Unlock()
	require.Len(t, spy.events, 2)
	assert.Equal(t, "r1", spy.events[0].Tags["run_id"])
	assert.Equal(t, "scheduled_run", spy.events[1].Tags["job"])
	_, leaked := spy.events[1].Tags["run_id"]
	assert.False(t, leaked, "tags are scoped to one capture")
}
