// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package htwheel

import (
	"fmt"

	"github.com/intuitivelabs/slog"
)

// Log is the generic logger used by this package.
// The log level can be changed at runtime with
// slog.SetLevel(&htwheel.Log, level).
var Log slog.Log

func init() {
	slog.Init(&Log, slog.LNOTICE, slog.LbackTraceS|slog.LlocInfoS,
		slog.LStdErr)
}

// DBGon returns true if debug messages are enabled.
func DBGon() bool {
	return Log.DBGon()
}

// WARNon returns true if warning messages are enabled.
func WARNon() bool {
	return Log.WARNon()
}

// ERRon returns true if error messages are enabled.
func ERRon() bool {
	return Log.ERRon()
}

// DBG is a shorthand for logging a debug message.
func DBG(f string, a ...interface{}) {
	Log.LLog(slog.LDBG, 1, "DBG: htwheel: ", f, a...)
}

// WARN is a shorthand for logging a warning message.
func WARN(f string, a ...interface{}) {
	Log.LLog(slog.LWARN, 1, "WARNING: htwheel: ", f, a...)
}

// ERR is a shorthand for logging an error message.
func ERR(f string, a ...interface{}) {
	Log.LLog(slog.LERR, 1, "ERROR: htwheel: ", f, a...)
}

// BUG is a shorthand for logging a bug message.
func BUG(f string, a ...interface{}) {
	Log.LLog(slog.LBUG, 1, "BUG: htwheel: ", f, a...)
}

// PANIC logs a bug message and panics.
func PANIC(f string, a ...interface{}) {
	Log.LLog(slog.LBUG, 1, "PANIC: htwheel: ", f, a...)
	panic(fmt.Sprintf("htwheel: "+f, a...))
}
