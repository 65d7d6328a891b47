package syncer

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay between the last slot mutation and the
// remote write it triggers.
const DefaultDebounce = time.Second

type pendingWrite struct {
	userID string
	fields map[string]any
}

// Debouncer coalesces bursts of slot writes into a bounded rate of remote
// updates. One pending timer exists at a time; each Schedule call replaces
// both the timer and the payload, so the write that eventually fires
// carries the fields of the triggering call only.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending *pendingWrite
	write   func(userID string, fields map[string]any)
}

func NewDebouncer(delay time.Duration, write func(userID string, fields map[string]any)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, write: write}
}

// Schedule replaces any pending write and restarts the delay.
func (d *Debouncer) Schedule(userID string, fields map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = &pendingWrite{userID: userID, fields: fields}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	p := d.pending
	// clear the handle before issuing the write so a setter called from
	// inside the write path schedules a fresh window instead of touching
	// a dead timer
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if p != nil {
		d.write(p.userID, p.fields)
	}
}

// Flush issues any pending write immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	p := d.pending
	d.pending = nil
	d.mu.Unlock()

	if p != nil {
		d.write(p.userID, p.fields)
	}
}

// Cancel drops any pending write without issuing it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
