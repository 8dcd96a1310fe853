// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package htwheel provides a hierarchical cascading timing wheel: a stack
// of fixed-size circular slot arrays at increasing time resolution, with
// O(1) amortised insert and expire cost for large numbers of pending
// timers. A timer is placed in the coarsest ring that can represent its
// delay and cascades into finer rings as its residual delay shrinks, so a
// timer scheduled for delay D fires after exactly D base ticks no matter
// how many rings it passes through.
//
// The wheel itself (HTWheel) is single threaded and driven explicitly via
// Tick()/TickN(); it performs no locking and must be owned by exactly one
// goroutine. Driver wraps a wheel with a wall-clock ticker goroutine and a
// submission channel for concurrent producers.
package htwheel

const NAME = "htwheel"

var BuildTags []string

// HTWheel is a hierarchical timing wheel over an opaque payload type.
// rings[0] is the finest level; every coarser ring's slot covers exactly
// one full rotation of the ring below it, which is what makes the cascade
// arithmetic sound.
type HTWheel[T any] struct {
	rings []ring[T]
}

// New creates a wheel with the given number of levels, all sized
// slotsPerLevel slots. slotCapacityHint only pre-sizes the per-slot queue
// storage and has no semantic effect. slotsPerLevel must be at least 2
// (with 1 slot per level every ring's span would equal its capacity and
// the hierarchy would degenerate). The total capacity S^levels must fit
// in an uint64.
func New[T any](levels, slotCapacityHint, slotsPerLevel int) (*HTWheel[T], error) {
	if levels < 1 {
		return nil, ErrInvalidLevels
	}
	if slotsPerLevel < 2 {
		return nil, ErrInvalidSlotCount
	}
	if slotCapacityHint < 0 {
		return nil, ErrInvalidCapacityHint
	}
	w := &HTWheel[T]{
		rings: make([]ring[T], levels),
	}
	span := uint64(1)
	for l := 0; l < levels; l++ {
		if span > ^uint64(0)/uint64(slotsPerLevel) {
			return nil, ErrCapacityOverflow
		}
		w.rings[l].init(l, slotsPerLevel, slotCapacityHint, span)
		span *= uint64(slotsPerLevel)
	}
	return w, nil
}

// MaxDelayTicks returns the first delay value Schedule rejects: the
// capacity of the topmost ring.
func (w *HTWheel[T]) MaxDelayTicks() uint64 {
	return w.rings[len(w.rings)-1].capacity
}

// Levels returns the number of rings in the hierarchy.
func (w *HTWheel[T]) Levels() int {
	return len(w.rings)
}

// Schedule places a payload due delayTicks base ticks from now and returns
// the level and slot it landed on. A 0 delay counts as 1: a just-submitted
// timer must not fire on the draining of the current slot, every timer
// gets at least one tick of latency.
// Delays at or above MaxDelayTicks() fail with ErrDelayTooLarge and leave
// the wheel untouched; the caller decides (bigger wheel, split delay or
// reject).
func (w *HTWheel[T]) Schedule(delayTicks uint64, payload T) (level, slot int, err error) {
	if delayTicks == 0 {
		delayTicks = 1
	}
	// first ring whose capacity holds the delay; since each ring's span
	// equals the capacity of the ring below, this is the ring where
	// delayTicks >= span (level 0 takes every delay below its capacity)
	for l := range w.rings {
		if delayTicks < w.rings[l].capacity {
			return l, w.rings[l].place(delayTicks, payload), nil
		}
	}
	return 0, 0, ErrDelayTooLarge
}

// Tick advances the wheel one base tick and returns the payloads that are
// due now, ring 0's natural due entries first, then anything a same-step
// cascade brought down to 0 residual, insertion order inside each slot.
func (w *HTWheel[T]) Tick() []T {
	return w.TickN(1)
}

// TickN advances the wheel steps base ticks, one cascade pass per tick,
// and returns the concatenation of the due payloads in pass order.
// TickN(n) is equivalent to n calls of Tick() with the results appended.
func (w *HTWheel[T]) TickN(steps int) []T {
	var due []T
	for s := 0; s < steps; s++ {
		due = w.advance(due)
	}
	return due
}

// advance performs one cascade pass, appending due payloads to the passed
// slice. Ring 0 always moves; a coarser ring moves only when the ring
// below it moved and wrapped, i.e. exactly once per full rotation of the
// finer ring. Entries drained from coarser rings re-enter through the
// Schedule path with their residual as the new delay, which lands them in
// a finer ring (residual < span of the drained ring == capacity one level
// down).
func (w *HTWheel[T]) advance(due []T) []T {
	for l := range w.rings {
		r := &w.rings[l]
		for _, e := range r.tick() {
			if e.residual == 0 {
				due = append(due, e.payload)
				continue
			}
			if _, _, err := w.Schedule(e.residual, e.payload); err != nil {
				// cannot happen while the span/capacity invariant holds
				PANIC("cascade re-schedule failed on level %d:"+
					" residual %d, max delay %d: %s\n",
					l, e.residual, w.MaxDelayTicks(), err)
			}
		}
		if !r.wrapped() {
			// no full rotation below => coarser rings stay put
			break
		}
	}
	return due
}
