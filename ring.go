// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package htwheel

// entry is what a slot queue holds: the payload together with the part of
// its delay not covered by the slot position at the owning ring's
// resolution.
type entry[T any] struct {
	residual uint64 // base ticks, always < the owning ring's span
	payload  T
}

// ring is one level of the hierarchy: a fixed circle of slot queues with a
// cursor marking "now" at this ring's resolution. One cursor step covers
// span base ticks; a full rotation covers capacity base ticks, which is
// exactly the span of the ring one level up.
type ring[T any] struct {
	level    int
	span     uint64 // base ticks represented by one slot (S^level)
	capacity uint64 // base ticks representable by the ring (S^(level+1))
	cursor   int
	qcap     int // initial slot queue capacity
	slots    [][]entry[T]
}

func (r *ring[T]) init(level, slotsPerLevel, qcap int, span uint64) {
	r.level = level
	r.span = span
	r.capacity = span * uint64(slotsPerLevel)
	r.cursor = 0
	r.qcap = qcap
	r.slots = make([][]entry[T], slotsPerLevel)
	for i := range r.slots {
		r.slots[i] = make([]entry[T], 0, qcap)
	}
}

// tick advances the cursor one position and drains the slot the cursor now
// points at: everything whose deadline just arrived at this ring's
// resolution, in insertion order.
func (r *ring[T]) tick() []entry[T] {
	r.cursor = (r.cursor + 1) % len(r.slots)
	drained := r.slots[r.cursor]
	if len(drained) == 0 {
		return nil
	}
	r.slots[r.cursor] = make([]entry[T], 0, r.qcap)
	return drained
}

// place files a payload due remaining base ticks from now into this ring
// and returns the chosen slot index. The part of the delay below this
// ring's resolution is kept as the entry residual, to be accounted for
// when the entry cascades down.
// The caller has already checked remaining < r.capacity, so the slot
// offset stays within one rotation.
func (r *ring[T]) place(remaining uint64, payload T) int {
	slot := (r.cursor + int(remaining/r.span)) % len(r.slots)
	r.slots[slot] = append(r.slots[slot],
		entry[T]{residual: remaining % r.span, payload: payload})
	return slot
}

// wrapped reports whether the last tick completed a full rotation
// (the cursor is back on slot 0).
func (r *ring[T]) wrapped() bool {
	return r.cursor == 0
}
