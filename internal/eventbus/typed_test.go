package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runDone struct {
	RunID    string
	Stations int
}

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[runDone]()
	ch := bus.Subscribe()
	bus.Publish(runDone{RunID: "r1", Stations: 3})
	assert.Equal(t, runDone{RunID: "r1", Stations: 3}, <-ch)
	bus.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestTypedBusReplaysLast(t *testing.T) {
	bus := NewTyped[runDone]()
	_, ok := bus.Last()
	assert.False(t, ok)

	bus.Publish(runDone{RunID: "r1"})
	bus.Publish(runDone{RunID: "r2"})
	last, ok := bus.Last()
	require.True(t, ok)
	assert.Equal(t, "r2", last.RunID)

	late := bus.Subscribe()
	assert.Equal(t, "r2", (<-late).RunID)
}

func TestTypedBusCountsDrops(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.Subscribe()
	for i := 0; i < BufferSize+3; i++ {
		bus.Publish(i)
	}
	assert.Equal(t, uint64(3), bus.Dropped())
	assert.Equal(t, 0, <-ch, "oldest events are kept")
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	_, ok := <-ch1
	assert.False(t, ok)
	_, ok = <-ch2
	assert.False(t, ok)

	bus.Publish(1)
	_, ok = bus.Last()
	assert.False(t, ok, "publishing on a closed bus is a no-op")
	_, ok = <-bus.Subscribe()
	assert.False(t, ok, "subscribing to a closed bus yields a closed channel")
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	assert.NotPanics(t, func() { bus.Unsubscribe(ch) })
}
