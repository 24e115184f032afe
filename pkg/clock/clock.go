// ABOUTME: Playback clock abstraction in seconds
// ABOUTME: Monotonic clock for real playback and a settable fake for tests
package clock

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Clock reports elapsed seconds on a monotonic timeline
type Clock interface {
	Now() float64
}

// Monotonic measures seconds since it was created
type Monotonic struct {
	start time.Time
}

// NewMonotonic creates a clock starting at zero
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Now returns seconds since construction
func (m *Monotonic) Now() float64 {
	return time.Since(m.start).Seconds()
}

// Fake is a manually driven clock
type Fake struct {
	mu  sync.RWMutex
	now float64
}

// NewFake creates a fake clock at t seconds
func NewFake(t float64) *Fake {
	return &Fake{now: t}
}

// Now returns the current fake time
func (f *Fake) Now() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Set moves the clock to t
func (f *Fake) Set(t float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d seconds
func (f *Fake) Advance(d float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += d
}

// FormatTime renders seconds as MM:SS; non-finite or negative input renders as --:--
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "--:--"
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
