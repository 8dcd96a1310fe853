// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package htwheel

import (
	"errors"
)

var ErrDelayTooLarge = errors.New("delay exceeds the top ring capacity")
var ErrInvalidLevels = errors.New("level count must be at least 1")
var ErrInvalidSlotCount = errors.New("slots per level must be at least 2")
var ErrInvalidCapacityHint = errors.New("negative slot capacity hint")
var ErrCapacityOverflow = errors.New("total wheel capacity overflows uint64 ticks")
var ErrTickTooSmall = errors.New("tick duration too small")
var ErrTickTooBig = errors.New("tick duration too high")
var ErrNoHandler = errors.New("nil due-payload handler")
var ErrNotRunning = errors.New("driver not running")
