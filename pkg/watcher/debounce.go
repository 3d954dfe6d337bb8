package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is how long a burst of change events may settle
// before a single notification fires.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces bursts of triggers into one callback.
type Debouncer struct {
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer. A non-positive duration selects
// DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Trigger schedules fn to run after the debounce duration elapses without
// another trigger. A pending callback is replaced, not queued.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Duration returns the configured debounce duration.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
