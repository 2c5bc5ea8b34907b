// Package eventbus provides an in-process publish/subscribe bus used to
// notify consumers such as the HTTP API of completed analysis runs.
package eventbus

import "sync"

// TypedBus is a type-safe publish/subscribe bus for events of type T.
// Delivery never blocks the publisher: a subscriber whose buffer is full
// misses the event and the loss is counted. The last published event is
// retained and replayed to late subscribers.
type TypedBus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	closed  bool
	last    T
	hasLast bool
	dropped uint64
}

// BufferSize is the channel capacity of every subscription.
const BufferSize = 8

// NewTyped creates a new TypedBus.
func NewTyped[T any]() *TypedBus[T] { return &TypedBus[T]{} }

// Publish sends the event to all subscribers and retains it for replay.
func (b *TypedBus[T]) Publish(e T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.last, b.hasLast = e, true
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped++
		}
	}
}

// Subscribe registers a subscriber and returns its channel. When an event
// was already published, the channel starts with it.
func (b *TypedBus[T]) Subscribe() <-chan T {
	ch := make(chan T, BufferSize)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		if b.hasLast {
			ch <- b.last
		}
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Last returns the most recently published event, if any.
func (b *TypedBus[T]) Last() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last, b.hasLast
}

// Dropped returns how many deliveries were skipped because a subscriber
// was not keeping up.
func (b *TypedBus[T]) Dropped() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *TypedBus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes the bus and all subscriber channels.
func (b *TypedBus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
