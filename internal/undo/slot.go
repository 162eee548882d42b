package undo

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/vtodo/internal/scheduler"
)

const DefaultWindow = 15 * time.Second

// Slot holds at most one Action together with the deadline after which it
// can no longer be undone. Every Record overwrites the previous action and
// restarts the window.
//
// Slot is not safe for concurrent use. The owner serializes every call,
// including the expiry callback, with its own lock.
type Slot struct {
	window   time.Duration
	clock    scheduler.Clock
	timer    *scheduler.Deferred
	onExpire func(gen uint64)

	action   Action
	deadline time.Time
	gen      uint64
}

// NewSlot builds a slot whose expiry is driven by clock. onExpire runs on the
// timer's goroutine with the generation that armed it; the owner is expected
// to take its lock and call Expire with that generation.
func NewSlot(window time.Duration, clock scheduler.Clock, onExpire func(gen uint64)) *Slot {
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = scheduler.SystemClock{}
	}
	return &Slot{
		window:   window,
		clock:    clock,
		timer:    scheduler.NewDeferred(clock),
		onExpire: onExpire,
	}
}

// Record stores a and re-arms the expiry timer. It returns the generation
// number of the new entry. An error means the expiry notice could not be
// armed; the action is still held and still bounded by its deadline.
func (s *Slot) Record(a Action) (uint64, error) {
	s.gen++
	gen := s.gen
	s.action = a
	s.deadline = s.clock.Now().Add(s.window)

	cb := s.onExpire
	if cb == nil {
		cb = func(uint64) {}
	}
	if _, err := s.timer.Schedule(s.window, func() { cb(gen) }); err != nil {
		return gen, fmt.Errorf("undo: arm expiry: %w", err)
	}
	return gen, nil
}

// Peek returns the stored action if it is still inside its window.
func (s *Slot) Peek() (Action, bool) {
	if s.action == nil {
		return nil, false
	}
	if !s.clock.Now().Before(s.deadline) {
		return nil, false
	}
	return s.action, true
}

// Clear empties the slot and cancels the pending expiry. It reports whether
// an action was held.
func (s *Slot) Clear() bool {
	held := s.action != nil
	s.action = nil
	s.deadline = time.Time{}
	s.timer.Cancel()
	return held
}

// Expire empties the slot if gen still names the stored action. The expired
// action is returned so the caller can report it.
func (s *Slot) Expire(gen uint64) (Action, bool) {
	if s.action == nil || gen != s.gen {
		return nil, false
	}
	a := s.action
	s.action = nil
	s.deadline = time.Time{}
	return a, true
}

// Remaining returns how long the stored action stays undoable.
func (s *Slot) Remaining() time.Duration {
	if s.action == nil {
		return 0
	}
	left := s.deadline.Sub(s.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}
