package pool

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a timer armed to fire after d.
func GetTimer(d time.Duration) *time.Timer {
	if t, ok := timerPool.Get().(*time.Timer); ok {
		t.Reset(d)
		return t
	}

	return time.NewTimer(d)
}

// PutTimer stops t and returns it to the pool. t cannot be used afterwards.
//
// With Go 1.23 timer semantics a stopped timer never delivers a pending fire, so
// t is not drained.
func PutTimer(t *time.Timer) {
	t.Stop()
	timerPool.Put(t)
}

// Wait blocks for d using a pooled timer, or until done is closed.
// It reports whether the full duration elapsed.
func Wait(d time.Duration, done <-chan struct{}) bool {
	t := GetTimer(d)
	defer PutTimer(t)

	select {
	case <-t.C:
		return true
	case <-done:
		return false
	}
}
