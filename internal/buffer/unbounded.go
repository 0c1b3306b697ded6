// Package buffer provides buffer implementations for concurrent event delivery.
package buffer

import (
	"sync"
)

// Unbounded provides non-blocking sends with unlimited buffering, so event
// producers never block waiting for consumers.
//
// Usage:
//
//	buf := buffer.NewUnbounded[MyType]()
//	go func() {
//	    for item := range buf.Receive() {
//	        // Process item
//	    }
//	}()
//	buf.Send(item1)  // Never blocks
//	buf.Close()      // Closes the receive channel after draining
type Unbounded[T any] struct {
	mu     sync.Mutex
	items  []T
	cond   *sync.Cond
	closed bool
	out    chan T
}

// NewUnbounded creates a new unbounded buffer.
// The returned buffer is ready to receive items via Send().
func NewUnbounded[T any]() *Unbounded[T] {
	b := &Unbounded[T]{
		items: make([]T, 0, 16),
		out:   make(chan T, 1),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.drainLoop()
	return b
}

// drainLoop moves items from the internal queue to the output channel until
// the buffer is closed and fully drained.
func (b *Unbounded[T]) drainLoop() {
	for {
		item, ok := b.dequeue()
		if !ok {
			close(b.out)
			return
		}
		b.out <- item
	}
}

// dequeue blocks until an item is available or the buffer is closed.
// Returns (zero, false) when closed and empty.
func (b *Unbounded[T]) dequeue() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.items) == 0 && !b.closed {
		b.cond.Wait()
	}

	if len(b.items) == 0 {
		var zero T
		return zero, false
	}

	item := b.items[0]
	b.items = b.items[1:]
	return item, true
}

// Send adds an item to the buffer. This method never blocks.
// Items sent after Close() are silently ignored.
func (b *Unbounded[T]) Send(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.items = append(b.items, item)
	b.cond.Signal()
}

// Receive returns the channel items are delivered on. The channel closes
// after Close() once all pending items are drained.
func (b *Unbounded[T]) Receive() <-chan T {
	return b.out
}

// Close marks the buffer as closed. Safe to call multiple times.
func (b *Unbounded[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	b.cond.Signal()
}

// Len returns the number of queued items. Primarily useful in tests.
func (b *Unbounded[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
