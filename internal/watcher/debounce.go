package watcher

import "time"

// DefaultDebounce is the quiescence window applied to change events.
const DefaultDebounce = 100 * time.Millisecond

// Debouncer collapses bursts of change events. It is not safe for
// concurrent use; the controller loop owns it.
type Debouncer struct {
	window   time.Duration
	last     time.Time
	accepted bool
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Window returns the quiescence window.
func (d *Debouncer) Window() time.Duration { return d.window }

// Accept reports whether a change observed at now should be acted on: it
// must come at least one window after the previously accepted change.
func (d *Debouncer) Accept(now time.Time) bool {
	if d.accepted && now.Sub(d.last) < d.window {
		return false
	}
	d.last = now
	d.accepted = true
	return true
}
