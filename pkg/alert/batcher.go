package alert

import (
	"sync"
	"time"
)

// Batcher groups alerts that arrive within a time window.
type Batcher struct {
	window   time.Duration
	callback func([]Alert)

	mu      sync.Mutex
	pending []Alert
	timer   *time.Timer
}

// NewBatcher creates a batcher that hands each window's alerts to callback.
func NewBatcher(window time.Duration, callback func([]Alert)) *Batcher {
	return &Batcher{
		window:   window,
		callback: callback,
	}
}

// Add queues an alert, starting the window if it is not already open.
func (b *Batcher) Add(a Alert) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, a)
	if b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.flush)
	}
}

func (b *Batcher) flush() {
	b.mu.Lock()
	toSend := b.pending
	b.pending = nil
	b.timer = nil
	b.mu.Unlock()

	if len(toSend) == 0 {
		return
	}
	b.callback(toSend)
}

// Flush sends pending alerts immediately.
func (b *Batcher) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()

	b.flush()
}

// Pending returns the number of queued alerts.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
