// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package htwheel

import (
	"sync/atomic"

	"github.com/intuitivelabs/timestamp"
)

// ticker runs one catch-up pass: it converts the wall time elapsed since
// the last pass into whole base ticks, advances the wheel by that many
// ticks and carries the remainder. It returns the number of ticks
// advanced. It runs only in the driver goroutine and _must_ never be
// called in parallel.
func (d *Driver[T]) ticker() uint64 {
	now := timestamp.Now()
	if now.Before(d.lastTickT) {
		// time going backwards!!
		d.badTime++
		if d.badTime > 10 {
			// re-init the time reference
			if ERRon() {
				ERR("trying to recover after time going backward"+
					" %d times with %s\n",
					d.badTime, d.lastTickT.Sub(now))
			}
			d.lastTickT = now
		} else if DBGon() {
			DBG("ticker: time going backward with %s (%d times)\n",
				d.lastTickT.Sub(now), d.badTime)
		}
		return 0
	}
	d.badTime = 0
	diff := now.Sub(d.lastTickT)
	if diff < d.tickDuration {
		// not a whole tick yet
		return 0
	}
	ticks, rest := d.Ticks(diff)
	d.lastTickT = now.Add(-rest)
	d.advanceTicks(ticks.Val())
	return ticks.Val()
}

// advanceTicks advances the wheel n base ticks, handing every due payload
// to the handler as its tick completes. Runs only in the driver goroutine.
func (d *Driver[T]) advanceTicks(n uint64) {
	for i := uint64(0); i < n; i++ {
		atomic.AddUint64(&d.nowTicks, 1)
		for _, p := range d.wheel.Tick() {
			d.handler(p)
		}
	}
}
