package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrInvalidDelay = errors.New("scheduler: invalid delay")

// Token identifies one Schedule call. A callback only runs while its token is
// still the current one.
type Token uint64

// Deferred holds at most one outstanding callback. Scheduling a new callback
// cancels the previous one; a callback that was superseded or cancelled but
// still fires (the timer raced its Stop) is a no-op.
type Deferred struct {
	mu    sync.Mutex
	clock Clock
	timer Timer
	token Token

	fired      uint64
	superseded uint64
}

func NewDeferred(clock Clock) *Deferred {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Deferred{clock: clock}
}

func (d *Deferred) Schedule(delay time.Duration, fn func()) (Token, error) {
	if delay <= 0 {
		return 0, ErrInvalidDelay
	}
	if fn == nil {
		return 0, errors.New("scheduler: nil callback")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		stopTimer(d.timer)
		atomic.AddUint64(&d.superseded, 1)
	}
	d.token++
	tk := d.token
	d.timer = d.clock.AfterFunc(delay, func() { d.fire(tk, fn) })
	return tk, nil
}

// Cancel stops the outstanding callback. It reports whether one was pending.
func (d *Deferred) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	stopTimer(d.timer)
	d.timer = nil
	d.token++
	return true
}

func (d *Deferred) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Current returns the token of the outstanding callback, or 0 when none is
// pending.
func (d *Deferred) Current() Token {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return 0
	}
	return d.token
}

func (d *Deferred) Fired() uint64 {
	return atomic.LoadUint64(&d.fired)
}

func (d *Deferred) Superseded() uint64 {
	return atomic.LoadUint64(&d.superseded)
}

func (d *Deferred) fire(tk Token, fn func()) {
	d.mu.Lock()
	if tk != d.token || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	atomic.AddUint64(&d.fired, 1)
	fn()
}

func stopTimer(t Timer) {
	if t == nil {
		return
	}
	t.Stop()
}
