// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package htwheel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/intuitivelabs/timestamp"
)

// A HandlerF is the callback invoked for every due payload. It runs in the
// driver goroutine: it should execute really fast and must not block under
// any circumstance (delays impact every other timer on the wheel). Slow
// consumers should hand the payload over to their own queue.
type HandlerF[T any] func(payload T)

// submission channel length; producers block once it fills up
const submitQLen = 64

// request is a pending submission: the wall-clock deadline together with
// the payload.
type request[T any] struct {
	deadline timestamp.TS
	payload  T
}

// Driver owns a wheel and advances it from the wall clock. The wheel
// itself offers no thread-safety guarantee, so all wheel access happens in
// the driver goroutine; concurrent producers hand their timers over
// through a submission channel (see After()).
type Driver[T any] struct {
	wheel   *HTWheel[T]
	handler HandlerF[T]

	tickDuration time.Duration
	nowTicks     uint64 // current ticks as uint64 (atomic access)

	lastTickT timestamp.TS // last time the ticks were advanced
	badTime   uint32       // count time going backwards

	submitCh chan request[T]
	cancel   chan struct{}  // used to stop the driver goroutine
	wg       sync.WaitGroup // waits for the driver goroutine
}

// Init initialises the driver: wheel geometry (see New()), tick duration
// and the due-payload handler.
// Note that tick durations that are too low cause high cpu usage when
// idle (too many wakeups); values below 1ms should be used only after
// measuring.
func (d *Driver[T]) Init(levels, slotCapacityHint, slotsPerLevel int,
	td time.Duration, h HandlerF[T]) error {
	if td < time.Microsecond {
		return ErrTickTooSmall
	} else if td > time.Hour*24 {
		// probably an error
		return ErrTickTooBig
	}
	if h == nil {
		return ErrNoHandler
	}
	w, err := New[T](levels, slotCapacityHint, slotsPerLevel)
	if err != nil {
		return err
	}
	d.wheel = w
	d.handler = h
	d.tickDuration = td
	d.submitCh = make(chan request[T], submitQLen)
	return nil
}

// Now returns the driver's current time in ticks.
func (d *Driver[T]) Now() Ticks {
	return NewTicks(atomic.LoadUint64(&d.nowTicks))
}

// Ticks returns the duration dur converted to whole ticks (round-down) and
// the rest, if dur is not an integer number of ticks.
func (d *Driver[T]) Ticks(dur time.Duration) (Ticks, time.Duration) {
	if d.tickDuration != 0 {
		t := dur / d.tickDuration
		return NewTicks(uint64(t)), dur % d.tickDuration
	}
	return NewTicks(0), dur
}

// Duration converts a ticks value to a time.Duration, according to the
// driver tick length.
func (d *Driver[T]) Duration(t Ticks) time.Duration {
	return time.Duration(t.Val()) * d.tickDuration
}

// TicksCeil converts a duration to a tick count, rounding up: a timer must
// never fire earlier than requested, so partial ticks always count as a
// whole one. Non-positive durations convert to 0.
func (d *Driver[T]) TicksCeil(dur time.Duration) uint64 {
	if dur <= 0 {
		return 0
	}
	return uint64((dur + d.tickDuration - 1) / d.tickDuration)
}

// After submits a timer: payload will be passed to the handler once dur
// has elapsed, rounded up to whole ticks (and never less than 1 tick).
// Durations that exceed the wheel range are rejected immediately with
// ErrDelayTooLarge and nothing is submitted. After Shutdown() it returns
// ErrNotRunning.
// After is safe to call from any goroutine.
func (d *Driver[T]) After(dur time.Duration, payload T) error {
	if ticks := d.TicksCeil(dur); ticks >= d.wheel.MaxDelayTicks() {
		// the remaining delay only shrinks while the request waits in
		// the channel, so checking the full duration here is enough
		return ErrDelayTooLarge
	}
	select {
	case <-d.cancel:
		return ErrNotRunning
	default:
	}
	r := request[T]{deadline: timestamp.Now().Add(dur), payload: payload}
	select {
	case d.submitCh <- r:
		return nil
	case <-d.cancel:
		return ErrNotRunning
	}
}

// schedule files a submitted request into the wheel. It runs only in the
// driver goroutine.
// The remaining delay is recomputed from the deadline at receive time:
// submissions can sit in the channel across ticker fires and scheduling
// latencies might advance the ticks by more than 1 at a time. Working from
// the deadline means latency can only delay a timer, never fire it early;
// overdue deadlines convert to 0 ticks and get the minimum 1 tick of
// latency from Schedule().
func (d *Driver[T]) schedule(r request[T]) {
	rest := r.deadline.Sub(timestamp.Now())
	ticks := d.TicksCeil(rest)
	if _, _, err := d.wheel.Schedule(ticks, r.payload); err != nil {
		// pre-validated in After() => bug
		BUG("submitted delay no longer fits the wheel:"+
			" %d ticks, max %d: %s\n",
			ticks, d.wheel.MaxDelayTicks(), err)
	}
}
