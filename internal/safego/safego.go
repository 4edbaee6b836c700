// Package safego provides a panic-recovering goroutine launcher for background work.
package safego

import (
	"log/slog"
	"runtime/debug"
)

// Go launches fn in a new goroutine. A panic inside fn is recovered and logged
// instead of crashing the process.
func Go(fn func()) {
	GoNamed("background", fn)
}

// GoNamed is Go with a task name attached to the recovery log record, used for
// long-running servers and collectors started from main.
func GoNamed(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine",
					"task", name, "panic", r, "stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
