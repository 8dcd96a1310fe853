// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package htwheel

import (
	"time"

	"github.com/intuitivelabs/timestamp"
)

// Start launches the driver goroutine. No timers fire and no submissions
// are consumed before Start() is called; in most cases it should be used
// right after Init().
func (d *Driver[T]) Start() {
	d.cancel = make(chan struct{})
	d.lastTickT = timestamp.Now()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if DBGon() {
			DBG("starting driver with %s tick at %s\n",
				d.tickDuration, time.Now())
		}
		ticker := time.NewTicker(d.tickDuration)
	loop:
		for {
			select {
			case <-d.cancel:
				DBG("canceled\n")
				break loop
			case r := <-d.submitCh:
				d.schedule(r)
			case _, ok := <-ticker.C:
				if !ok {
					break loop
				}
				d.ticker()
			}
		}
		ticker.Stop()
	}()
}

// Shutdown signals the driver goroutine to stop and waits for it to
// finish. Pending timers are discarded with the wheel.
func (d *Driver[T]) Shutdown() {
	if d.cancel != nil {
		close(d.cancel)
	}
	d.wg.Wait()
}
