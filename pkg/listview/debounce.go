package listview

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const DefaultDebounce = 500 * time.Millisecond

type DebounceOption func(*Debouncer)

func WithClock(c clockwork.Clock) DebounceOption {
	return func(d *Debouncer) {
		d.clock = c
	}
}

// Debouncer holds a text value that updates immediately and reports changes
// to onChange only after delay has passed without further input.
type Debouncer struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	delay    time.Duration
	onChange func(string)

	value  string
	timer  clockwork.Timer
	gen    uint64
	closed bool
}

func NewDebouncer(delay time.Duration, onChange func(string), opts ...DebounceOption) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	d := &Debouncer{
		clock:    clockwork.NewRealClock(),
		delay:    delay,
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Type records value and restarts the quiet period.
func (d *Debouncer) Type(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.value = value
	d.stopLocked()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Sync replaces the value from outside without emitting, dropping any
// pending emission.
func (d *Debouncer) Sync(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value = value
	d.stopLocked()
}

// Close cancels a pending emission. Nothing is emitted after Close returns.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.stopLocked()
}

func (d *Debouncer) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	value := d.value
	d.timer = nil
	d.mu.Unlock()
	if d.onChange != nil {
		d.onChange(value)
	}
}
