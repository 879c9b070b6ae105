// Package broker implements the streaming broker: a bounded, multi-producer,
// single-consumer event queue uniquely owned by one request (spec.md §4.1).
// Unlike teacher pkg/events' process-wide ConnectionManager (which fans out
// one channel to many WebSocket subscribers), one Broker instance lives and
// dies with a single chat-stream request.
package broker

import (
	"sync"

	"github.com/medsync-ai/orchestrator/pkg/models"
)

// bufferSize bounds the event queue. Large enough that a burst of status
// events never blocks a producer under normal operation, per spec.md §4.1
// ("bounded but large").
const bufferSize = 256

// Broker multiplexes events from many producers to one consumer within a
// single request.
type Broker struct {
	mu        sync.RWMutex // held shared by in-flight Put sends, exclusive by Close
	closed    bool
	events    chan models.Event
	closeOnce sync.Once
}

// New creates a Broker ready to accept Put calls.
func New() *Broker {
	return &Broker{events: make(chan models.Event, bufferSize)}
}

// Put enqueues an event. It blocks if the buffer is full (backpressure) and
// is a no-op once the broker is closed. Close waits for any in-flight Put to
// finish before closing the channel, so this never sends on a closed channel.
func (b *Broker) Put(event models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	b.events <- event
}

// Close sends no terminal sentinel of its own — closing the channel is the
// sentinel — and is idempotent (spec.md §4.1 "close() ... is idempotent").
func (b *Broker) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.closed = true
		close(b.events)
	})
}

// Iterate yields events in enqueue order until Close, then returns. The sole
// consumer calls this exactly once.
func (b *Broker) Iterate(yield func(models.Event) bool) {
	for event := range b.events {
		if !yield(event) {
			return
		}
	}
}
