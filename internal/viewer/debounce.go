package viewer

import (
	"sync"
	"time"
)

// Debouncer runs the last function triggered for a key once the key has
// been quiet for the delay.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCall
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Trigger replaces any pending call for key and restarts the delay.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	call := &pendingCall{fn: fn}
	call.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending[key] != call {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		call.fn()
	})
	d.pending[key] = call
}

// Cancel drops the pending call for key. It reports whether one was dropped.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports how many calls are waiting.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush runs every pending call now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	calls := make([]*pendingCall, 0, len(d.pending))
	for key, p := range d.pending {
		// A timer that already fired finds its entry gone and returns
		// without calling fn, so fn runs exactly once, here.
		p.timer.Stop()
		calls = append(calls, p)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, p := range calls {
		p.fn()
	}
}
