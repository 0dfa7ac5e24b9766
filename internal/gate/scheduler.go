// Package gate implements counters that only let an action through after
// the user repeats a trigger a configured number of times within a time
// window.
package gate

import (
	"time"

	"fyne.io/fyne/v2"
)

const (
	DefaultPerTapTimeout  = 300 * time.Millisecond
	DefaultPerBackTimeout = 500 * time.Millisecond

	MinRequiredCount = 1
	MaxRequiredCount = 5
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Gates assume f runs on the same goroutine
// that calls Trigger/HandleBack.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type mainThread struct{}

// MainThread returns a Scheduler whose callbacks run on the Fyne main
// goroutine.
func MainThread() Scheduler {
	return mainThread{}
}

func (mainThread) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() {
		fyne.Do(f)
	})
}

// ClampRequiredCount limits n to the supported range.
func ClampRequiredCount(n int) int {
	switch {
	case n < MinRequiredCount:
		return MinRequiredCount
	case n > MaxRequiredCount:
		return MaxRequiredCount
	default:
		return n
	}
}
