package buffer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, buf *Unbounded[int]) []int {
	t.Helper()

	var items []int
	timeout := time.After(2 * time.Second)
	for {
		select {
		case item, ok := <-buf.Receive():
			if !ok {
				return items
			}
			items = append(items, item)
		case <-timeout:
			t.Fatal("timed out draining buffer")
		}
	}
}

func TestUnbounded_PreservesOrder(t *testing.T) {
	buf := NewUnbounded[int]()

	for i := 0; i < 100; i++ {
		buf.Send(i)
	}
	buf.Close()

	items := drain(t, buf)
	require.Len(t, items, 100)
	for i, item := range items {
		assert.Equal(t, i, item)
	}
}

func TestUnbounded_SendNeverBlocks(t *testing.T) {
	buf := NewUnbounded[int]()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			buf.Send(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked without a consumer")
	}
	buf.Close()
}

func TestUnbounded_CloseDrainsPendingItems(t *testing.T) {
	buf := NewUnbounded[int]()

	buf.Send(1)
	buf.Send(2)
	buf.Close()

	// Items queued before Close are still delivered.
	assert.Equal(t, []int{1, 2}, drain(t, buf))
}

func TestUnbounded_SendAfterCloseIgnored(t *testing.T) {
	buf := NewUnbounded[int]()

	buf.Close()
	assert.NotPanics(t, func() { buf.Send(1) })

	assert.Empty(t, drain(t, buf))
}

func TestUnbounded_CloseIdempotent(t *testing.T) {
	buf := NewUnbounded[int]()

	assert.NotPanics(t, func() {
		buf.Close()
		buf.Close()
	})
}

func TestUnbounded_ConcurrentSenders(t *testing.T) {
	buf := NewUnbounded[int]()

	const senders = 8
	const perSender = 250

	var wg sync.WaitGroup
	wg.Add(senders)
	for i := 0; i < senders; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				buf.Send(j)
			}
		}()
	}
	wg.Wait()
	buf.Close()

	assert.Len(t, drain(t, buf), senders*perSender)
}
