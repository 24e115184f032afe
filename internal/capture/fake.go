// ABOUTME: Scripted recorder for tests and headless runs
// ABOUTME: Produces a fixed buffer instead of touching a capture device
package capture

import (
	"context"
	"sync"
	"time"

	"github.com/harperreed/flipit/pkg/audio"
)

// Fake is a Recorder returning Buffer when each session stops
type Fake struct {
	Buffer      *audio.Buffer
	StartErr    error
	FinishErr   error
	MaxDuration time.Duration

	mu       sync.Mutex
	sessions []*Session
}

// Start begins a scripted session
func (f *Fake) Start(ctx context.Context) (*Session, error) {
	if f.StartErr != nil {
		return nil, f.StartErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	buf := f.Buffer
	finishErr := f.FinishErr
	s := newSession(ctx, f.MaxDuration, func() (*audio.Buffer, error) {
		return buf, finishErr
	})
	f.sessions = append(f.sessions, s)
	return s, nil
}

// Sessions returns every session started so far
func (f *Fake) Sessions() []*Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Session(nil), f.sessions...)
}
