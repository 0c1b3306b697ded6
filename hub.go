package reagent

import (
	"sync"

	"github.com/rvalens/reagent/internal/buffer"
)

// UnsubscribeFunc cancels a hub subscription. After calling, the subscription
// channel is closed and no more events are delivered. Safe to call multiple
// times.
type UnsubscribeFunc func()

// hubSubscription is a single subscriber's delivery queue.
type hubSubscription struct {
	id     uint64
	buffer *buffer.Unbounded[Event]
}

// EventHub is a channel-backed [Reporter] that fans run events out to
// subscribers. Emission never blocks: each subscriber gets an unbounded
// delivery queue, so a slow (or absent) consumer cannot stall the loop.
//
// A hub with zero subscribers behaves exactly like [DiscardReporter].
// All methods are concurrent-safe.
type EventHub struct {
	mu sync.RWMutex

	subscribers []*hubSubscription
	closed      bool
	nextID      uint64
}

// NewEventHub creates a new EventHub.
func NewEventHub() *EventHub {
	return &EventHub{}
}

// Subscribe creates a subscription that receives every subsequent event.
// Returns the delivery channel and an unsubscribe function.
func (h *EventHub) Subscribe() (<-chan Event, UnsubscribeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		// Return closed channel
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	sub := &hubSubscription{
		id:     h.nextID,
		buffer: buffer.NewUnbounded[Event](),
	}
	h.nextID++
	h.subscribers = append(h.subscribers, sub)

	unsubscribe := func() {
		h.unsubscribe(sub)
	}

	return sub.buffer.Receive(), unsubscribe
}

// unsubscribe removes a subscription and closes its queue.
func (h *EventHub) unsubscribe(sub *hubSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub.buffer.Close()

	for i, s := range h.subscribers {
		if s.id == sub.id {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			return
		}
	}
}

// Report delivers event to every subscriber in subscription order.
// It implements [Reporter] and never blocks.
func (h *EventHub) Report(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for _, sub := range h.subscribers {
		sub.buffer.Send(event)
	}
}

// Close closes all subscription channels after their queued events drain.
// Safe to call multiple times.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for _, sub := range h.subscribers {
		sub.buffer.Close()
	}
}

// Compile-time check that EventHub implements Reporter.
var _ Reporter = (*EventHub)(nil)
