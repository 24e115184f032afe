// ABOUTME: In-memory sink for tests and headless runs
// ABOUTME: Records every Start and lets callers finish playback by hand
package output

import (
	"sync"

	"github.com/harperreed/flipit/pkg/audio"
	"github.com/harperreed/flipit/pkg/clock"
)

// Fake is a Sink that produces no sound. Playback only ends when a test
// calls End on the handle.
type Fake struct {
	Clock *clock.Fake

	// StartErr, when set, is returned by Start
	StartErr error

	mu      sync.Mutex
	handles []*FakeHandle
}

// FakeHandle records one Start call
type FakeHandle struct {
	Buffer *audio.Buffer
	Offset float64

	mu      sync.Mutex
	onEnded func()
	stopped bool
	ended   bool
}

// NewFake creates a fake sink driven by c
func NewFake(c *clock.Fake) *Fake {
	if c == nil {
		c = clock.NewFake(0)
	}
	return &Fake{Clock: c}
}

// Start records the request
func (f *Fake) Start(buf *audio.Buffer, offset float64, onEnded func()) (Handle, error) {
	if f.StartErr != nil {
		return nil, f.StartErr
	}

	h := &FakeHandle{Buffer: buf, Offset: offset, onEnded: onEnded}

	f.mu.Lock()
	f.handles = append(f.handles, h)
	f.mu.Unlock()

	return h, nil
}

// Now returns the fake clock time
func (f *Fake) Now() float64 {
	return f.Clock.Now()
}

// Close stops every handle
func (f *Fake) Close() error {
	for _, h := range f.Handles() {
		h.Stop()
	}
	return nil
}

// Handles returns every handle started so far, oldest first
func (f *Fake) Handles() []*FakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*FakeHandle, len(f.handles))
	copy(out, f.handles)
	return out
}

// Live returns handles that are neither stopped nor ended
func (f *Fake) Live() []*FakeHandle {
	var live []*FakeHandle
	for _, h := range f.Handles() {
		if h.Active() {
			live = append(live, h)
		}
	}
	return live
}

// Last returns the most recent handle, or nil
func (f *Fake) Last() *FakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.handles) == 0 {
		return nil
	}
	return f.handles[len(f.handles)-1]
}

// Stop halts the handle without firing completion
func (h *FakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
}

// Stopped reports whether Stop was called
func (h *FakeHandle) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Active reports whether the handle is still playing
func (h *FakeHandle) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.stopped && !h.ended
}

// End simulates reaching the end of the buffer. Completion is reported
// even for stopped handles so tests can exercise stale callbacks.
func (h *FakeHandle) End() {
	h.mu.Lock()
	h.ended = true
	onEnded := h.onEnded
	h.mu.Unlock()

	if onEnded != nil {
		onEnded()
	}
}
