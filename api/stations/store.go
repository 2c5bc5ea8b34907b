// Package stations serves the latest analysis results over HTTP.
package stations

import (
	"context"
	"sync"

	"github.com/kilianp07/velomagg/core/events"
	"github.com/kilianp07/velomagg/internal/eventbus"
)

// Store holds the most recent completed run.
type Store struct {
	mu     sync.RWMutex
	latest *events.RunCompleted
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Set replaces the stored run.
func (s *Store) Set(ev events.RunCompleted) {
	s.mu.Lock()
	s.latest = &ev
	s.mu.Unlock()
}

// Latest returns the stored run, if any.
func (s *Store) Latest() (events.RunCompleted, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return events.RunCompleted{}, false
	}
	return *s.latest, true
}

// Follow keeps the store updated from the bus until ctx is cancelled or the
// bus is closed.
func (s *Store) Follow(ctx context.Context, bus *eventbus.TypedBus[events.RunCompleted]) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			s.Set(ev)
		}
	}
}
