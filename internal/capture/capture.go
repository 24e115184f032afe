// ABOUTME: Microphone recording sessions
// ABOUTME: Recorder interface, session lifecycle and the recording ceiling
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/flipit/pkg/audio"
	"github.com/harperreed/flipit/pkg/audio/decode"
	"github.com/harperreed/flipit/pkg/audio/encode"
)

// DefaultMaxDuration is the recording ceiling
const DefaultMaxDuration = 120 * time.Second

var (
	// ErrPermissionDenied is returned when the capture device cannot be opened
	ErrPermissionDenied = errors.New("microphone access denied")

	// ErrUnsupported is returned when no capture backend is available
	ErrUnsupported = errors.New("recording not supported")

	// ErrBusy is returned when a session is already running
	ErrBusy = errors.New("recording already in progress")

	// ErrEmpty is returned when a session captured no audio
	ErrEmpty = errors.New("no audio captured")
)

// Recorder starts microphone sessions
type Recorder interface {
	Start(ctx context.Context) (*Session, error)
}

// Result is the outcome of a session
type Result struct {
	Data     []byte
	MimeType string
	Duration time.Duration

	// Limited is set when the ceiling stopped the session
	Limited bool
	Err     error
}

// Session is one recording. It ends on Stop, context cancellation or when
// the ceiling is reached, and then delivers exactly one Result on Done.
type Session struct {
	started time.Time
	max     time.Duration

	// finish halts the backend and returns what it captured
	finish func() (*audio.Buffer, error)

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan Result

	mu    sync.Mutex
	ended time.Time
}

func newSession(ctx context.Context, ceiling time.Duration, finish func() (*audio.Buffer, error)) *Session {
	if ceiling <= 0 {
		ceiling = DefaultMaxDuration
	}

	s := &Session{
		started: time.Now(),
		max:     ceiling,
		finish:  finish,
		stopCh:  make(chan struct{}),
		done:    make(chan Result, 1),
	}
	go s.run(ctx)
	return s
}

// Stop ends the session. Calling it more than once is harmless.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Done delivers the result once the session has ended
func (s *Session) Done() <-chan Result {
	return s.done
}

// Elapsed is the recording time so far, capped at the ceiling
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	end := s.ended
	s.mu.Unlock()

	var d time.Duration
	if end.IsZero() {
		d = time.Since(s.started)
	} else {
		d = end.Sub(s.started)
	}
	if d > s.max {
		d = s.max
	}
	return d
}

// MaxDuration is the ceiling for this session
func (s *Session) MaxDuration() time.Duration {
	return s.max
}

func (s *Session) run(ctx context.Context) {
	timer := time.NewTimer(s.max)
	defer timer.Stop()

	limited := false
	select {
	case <-s.stopCh:
	case <-ctx.Done():
	case <-timer.C:
		limited = true
	}

	s.mu.Lock()
	s.ended = time.Now()
	s.mu.Unlock()

	res := Result{Limited: limited}
	buf, err := s.finish()
	if err == nil && buf.Frames() == 0 {
		err = ErrEmpty
	}
	if err == nil {
		res.Data, err = encode.WAV(buf)
	}
	if err != nil {
		res.Err = fmt.Errorf("recording failed: %w", err)
	} else {
		res.MimeType = decode.MimeWAV
		res.Duration = time.Duration(buf.Duration() * float64(time.Second))
	}

	s.done <- res
	close(s.done)
}
