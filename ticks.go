// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package htwheel

import (
	"strconv"
)

const (
	// TicksBits is the width of a Ticks value.
	TicksBits = 48
	// MaxTicksDiff is the maximum difference between 2 Ticks values for
	// which ordered comparisons are still meaningful.
	MaxTicksDiff = 1 << (TicksBits - 1)
	TicksMask    = (MaxTicksDiff - 1) | MaxTicksDiff
)

// Ticks is the driver's absolute time expressed in base ticks. It
// increases monotonically and wraps around on TicksBits bits; it has no 0
// or reference value. 2 Ticks values can be ordered as long as the
// difference between them is strictly less than MaxTicksDiff.
//
// Operations on Ticks should be performed only through its methods,
// especially the comparisons.
type Ticks struct {
	v uint64
}

// NewTicks creates a new ticks value from an uint64.
func NewTicks(u uint64) Ticks {
	return Ticks{u & TicksMask}
}

// Val returns the ticks value as an uint64.
func (t Ticks) Val() uint64 {
	return t.v & TicksMask
}

// EQ returns true if t == u, wraparound included
// (e.g. on 8 bits 0x101 would be equal to 0x001).
func (t Ticks) EQ(u Ticks) bool {
	return (t.v-u.v)&TicksMask == 0
}

// NE returns true if t != u, wraparound included.
func (t Ticks) NE(u Ticks) bool {
	return !t.EQ(u)
}

// LT returns true if t < u.
func (t Ticks) LT(u Ticks) bool {
	return (t.v-u.v)&MaxTicksDiff != 0
}

// GT returns true if t > u.
func (t Ticks) GT(u Ticks) bool {
	return !t.LT(u) && t.NE(u)
}

// GE returns true if t >= u.
func (t Ticks) GE(u Ticks) bool {
	return (t.v-u.v)&MaxTicksDiff == 0
}

// LE returns true if t <= u.
func (t Ticks) LE(u Ticks) bool {
	return t.LT(u) || t.EQ(u)
}

// Add adds another ticks value and returns the result.
func (t Ticks) Add(u Ticks) Ticks {
	return Ticks{(t.v + u.v) & TicksMask}
}

// Sub subtracts another ticks value and returns the result.
func (t Ticks) Sub(u Ticks) Ticks {
	return Ticks{(t.v - u.v) & TicksMask}
}

// AddUint64 adds an uint64 value and returns the result.
func (t Ticks) AddUint64(u uint64) Ticks {
	return Ticks{(t.v + u) & TicksMask}
}

// SubUint64 subtracts an uint64 value and returns the result.
func (t Ticks) SubUint64(u uint64) Ticks {
	return Ticks{(t.v - u) & TicksMask}
}

// String converts a ticks value to a string.
func (t Ticks) String() string {
	return strconv.FormatUint(t.v, 10)
}
