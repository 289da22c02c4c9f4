package domain

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer delays work until input has settled. Only the most recent call
// to WaitOrSkip can resolve as not skipped.
type Debouncer struct {
	clock clockwork.Clock

	mu      sync.Mutex
	seq     uint64
	pending *debounceWait
}

type debounceWait struct {
	id         uint64
	timer      clockwork.Timer
	superseded chan struct{}
}

// NewDebouncer creates a debouncer driven by clock.
func NewDebouncer(clock clockwork.Clock) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{clock: clock}
}

// WaitOrSkip blocks for delay and reports whether the caller should skip its
// work: true when token fired or a newer call arrived in the meantime.
func (d *Debouncer) WaitOrSkip(token *CancellationToken, delay time.Duration) bool {
	d.mu.Lock()
	d.seq++
	id := d.seq
	d.invalidateLocked()

	if token.IsCancelled() {
		d.mu.Unlock()
		return true
	}

	wait := &debounceWait{
		id:         id,
		timer:      d.clock.NewTimer(delay),
		superseded: make(chan struct{}),
	}
	d.pending = wait
	d.mu.Unlock()

	select {
	case <-token.Done():
		d.release(wait)
		return true
	case <-wait.superseded:
		return true
	case <-wait.timer.Chan():
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.seq != id {
			// A newer call arrived after our timer fired.
			return true
		}
		d.pending = nil
		return false
	}
}

// invalidateLocked stops the outstanding wait, forcing it to skip.
func (d *Debouncer) invalidateLocked() {
	if d.pending == nil {
		return
	}
	d.pending.timer.Stop()
	close(d.pending.superseded)
	d.pending = nil
}

func (d *Debouncer) release(wait *debounceWait) {
	d.mu.Lock()
	defer d.mu.Unlock()
	wait.timer.Stop()
	if d.pending == wait {
		d.pending = nil
	}
}
