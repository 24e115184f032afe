// ABOUTME: Application controller owning all clip and playback state
// ABOUTME: Serializes every operation through one event loop
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/flipit/internal/capture"
	"github.com/harperreed/flipit/internal/store"
	"github.com/harperreed/flipit/pkg/audio"
	"github.com/harperreed/flipit/pkg/audio/encode"
	"github.com/harperreed/flipit/pkg/audio/output"
	"github.com/harperreed/flipit/pkg/clock"
	"github.com/harperreed/flipit/pkg/transport"
)

const (
	// recordingTickInterval is how often the elapsed recording time refreshes
	recordingTickInterval = 120 * time.Millisecond

	// storeTimeout bounds a single store call
	storeTimeout = 5 * time.Second

	opQueueSize = 256
)

// Store persists the latest clips
type Store interface {
	Get(ctx context.Context) (*store.Record, error)
	Put(ctx context.Context, rec store.Record) error
	Delete(ctx context.Context) error
}

// Fetcher downloads clips by URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Config wires the controller to its collaborators
type Config struct {
	Sink output.Sink

	// Recorder may be nil, in which case recording reports unsupported
	Recorder capture.Recorder

	// Store may be nil, in which case nothing is persisted
	Store Store

	// Fetcher may be nil, in which case FetchClip fails
	Fetcher Fetcher

	WaveformSamples int
	MaxSeconds      int
	TickInterval    time.Duration
}

type recording struct {
	kind     Kind
	session  *capture.Session
	stopTick chan struct{}
}

// Controller owns application state. All state lives on the event loop
// started by Run; public methods submit work to it and wait.
type Controller struct {
	cfg     Config
	session string
	engine  *transport.Engine

	ops  chan func()
	done chan struct{}

	// Store calls run in order on their own goroutine
	writes     chan func()
	writesDone chan struct{}

	// Loop-owned state
	runCtx          context.Context
	original        *clip
	mimic           *clip
	originalStatus  string
	mimicStatus     string
	transportStatus string
	recording       *recording
	saveGen         int

	subsMu  sync.Mutex
	subs    map[int]chan State
	nextSub int
}

// New creates a controller. Call Run to start processing.
func New(cfg Config) (*Controller, error) {
	if cfg.WaveformSamples <= 0 {
		cfg.WaveformSamples = audio.DefaultPeakCount
	}
	if cfg.MaxSeconds <= 0 {
		cfg.MaxSeconds = int(capture.DefaultMaxDuration / time.Second)
	}

	c := &Controller{
		cfg:             cfg,
		session:         uuid.New().String(),
		ops:             make(chan func(), opQueueSize),
		done:            make(chan struct{}),
		writes:          make(chan func(), opQueueSize),
		writesDone:      make(chan struct{}),
		runCtx:          context.Background(),
		originalStatus:  statusOriginalReady,
		mimicStatus:     statusMimicReady,
		transportStatus: transport.StatusIdle,
		subs:            make(map[int]chan State),
	}

	engine, err := transport.NewEngine(transport.Config{
		Sink:         cfg.Sink,
		Library:      library{c},
		Dispatch:     c.post,
		TickInterval: cfg.TickInterval,
		OnStatus:     func(s string) { c.transportStatus = s },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	c.engine = engine

	return c, nil
}

// Run processes operations until ctx is cancelled
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	log.Printf("Controller running (session %s)", c.session)
	go c.writeLoop()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			close(c.done)
			// Let queued saves land before the store is closed
			<-c.writesDone
			return nil
		case op := <-c.ops:
			op()
			c.publish()
		}
	}
}

// Do runs fn on the event loop and returns its error
func (c *Controller) Do(fn func() error) error {
	res := make(chan error, 1)

	select {
	case c.ops <- func() { res <- fn() }:
	case <-c.done:
		return ErrClosed
	}

	select {
	case err := <-res:
		return err
	case <-c.done:
		return ErrClosed
	}
}

// post queues fn without waiting. Work posted after shutdown is dropped.
func (c *Controller) post(fn func()) {
	select {
	case c.ops <- fn:
	case <-c.done:
	}
}

func (c *Controller) shutdown() {
	if c.recording != nil {
		c.recording.session.Stop()
		c.endRecording()
	}
	c.engine.StopAll(false)
	close(c.writes)

	c.subsMu.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()
}

// Snapshot returns the current view model
func (c *Controller) Snapshot() (State, error) {
	var s State
	err := c.Do(func() error {
		s = c.snapshot()
		return nil
	})
	return s, err
}

// Subscribe delivers the latest state after every change. Slow readers
// only ever see the newest state. Call the returned func to unsubscribe.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subsMu.Unlock()

	// An empty op makes the loop publish the current state
	c.post(func() {})

	return ch, func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
}

func (c *Controller) publish() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if len(c.subs) == 0 {
		return
	}

	s := c.snapshot()
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
			// Replace the stale state
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

func (c *Controller) snapshot() State {
	s := State{
		Session:         c.session,
		Original:        c.panel(KindOriginal),
		Mimic:           c.panel(KindMimic),
		TransportStatus: c.transportStatus,
		Tracks:          c.engine.Snapshots(),
		PreviewActive:   c.engine.PreviewActive(),
		MaxSeconds:      c.cfg.MaxSeconds,
	}
	if c.original != nil {
		s.Waveforms.Original = c.original.peaks
	}
	if c.mimic != nil {
		s.Waveforms.Mimic = c.mimic.peaks
	}
	if c.recording != nil {
		s.RecordingActive = true
		s.RecordingKind = c.recording.kind
		s.RecordingElapsed = c.recording.session.Elapsed().Seconds()
	}
	return s
}

func (c *Controller) panel(kind Kind) Panel {
	p := Panel{
		Kind:         kind,
		DurationText: statusNoDuration,
		Format:       statusNoFormat,
		Status:       c.originalStatus,
	}
	cl := c.original
	if kind == KindMimic {
		p.Status = c.mimicStatus
		cl = c.mimic
	}

	if cl != nil {
		p.Present = true
		p.Duration = cl.buffer.Duration()
		p.DurationText = clock.FormatTime(p.Duration)
		p.Format = cl.format()
	}
	return p
}

func (c *Controller) setPanelStatus(kind Kind, status string) {
	if kind == KindMimic {
		c.mimicStatus = status
	} else {
		c.originalStatus = status
	}
}

func (c *Controller) setClip(kind Kind, cl *clip) {
	if kind == KindMimic {
		c.mimic = cl
	} else {
		c.original = cl
	}
	c.engine.Refresh()
}

func (c *Controller) clip(kind Kind) *clip {
	if kind == KindMimic {
		return c.mimic
	}
	return c.original
}

// library resolves selections against the controller's clips
type library struct {
	c *Controller
}

func (l library) Buffer(sel transport.Selection) *audio.Buffer {
	switch sel {
	case transport.Original:
		if l.c.original != nil {
			return l.c.original.buffer
		}
	case transport.OriginalReverse:
		if l.c.original != nil {
			return l.c.original.reversed
		}
	case transport.Mimic:
		if l.c.mimic != nil {
			return l.c.mimic.buffer
		}
	case transport.MimicReverse:
		if l.c.mimic != nil {
			return l.c.mimic.reversed
		}
	}
	return nil
}

func (c *Controller) writeLoop() {
	defer close(c.writesDone)
	for w := range c.writes {
		w()
	}
}

// enqueueWrite queues a store call behind earlier ones. Must be called on
// the event loop. The call outlives the loop context so the last save
// still lands during shutdown.
func (c *Controller) enqueueWrite(fn func(ctx context.Context)) {
	base := context.WithoutCancel(c.runCtx)
	c.writes <- func() {
		ctx, cancel := context.WithTimeout(base, storeTimeout)
		defer cancel()
		fn(ctx)
	}
}

// save writes both clips after a state change without blocking the loop.
// Failures only change the transport status, and only the newest save
// reports.
func (c *Controller) save(okStatus string) {
	if c.cfg.Store == nil {
		c.transportStatus = okStatus
		return
	}

	rec := store.Record{UpdatedAt: time.Now()}
	if c.original != nil {
		rec.OriginalBlob = c.original.data
		rec.OriginalMime = c.original.mime
	}
	if c.mimic != nil {
		rec.MimicBlob = c.mimic.data
		rec.MimicMime = c.mimic.mime
	}

	c.saveGen++
	gen := c.saveGen
	st := c.cfg.Store

	c.enqueueWrite(func(ctx context.Context) {
		err := st.Put(ctx, rec)
		if err != nil {
			log.Printf("Failed to save clips: %v", err)
		}
		c.post(func() {
			if gen != c.saveGen {
				return
			}
			if err != nil {
				c.transportStatus = statusStorageUnavailable
				return
			}
			c.transportStatus = okStatus
		})
	})
}

// Load restores clips from the store
func (c *Controller) Load(ctx context.Context) error {
	return c.Do(func() error {
		if c.cfg.Store == nil {
			return nil
		}

		rec, err := c.cfg.Store.Get(ctx)
		if err != nil {
			log.Printf("Failed to load clips: %v", err)
			c.transportStatus = statusStorageUnavailable
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if rec.Empty() {
			return nil
		}

		for _, part := range []struct {
			kind Kind
			data []byte
			mime string
		}{
			{KindOriginal, rec.OriginalBlob, rec.OriginalMime},
			{KindMimic, rec.MimicBlob, rec.MimicMime},
		} {
			if len(part.data) == 0 {
				continue
			}
			cl, err := newClip(part.data, part.mime, c.cfg.WaveformSamples)
			if err != nil {
				log.Printf("Failed to decode stored %s: %v", part.kind, err)
				c.transportStatus = statusStorageUnavailable
				return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
			}
			c.setClip(part.kind, cl)
		}

		log.Printf("Loaded clips from storage (updated %s)", rec.UpdatedAt.Format(time.RFC3339))
		c.transportStatus = statusLoaded
		return nil
	})
}

// ClearStorage stops playback, resets every panel and deletes the stored
// record. The delete is queued behind pending saves so none of them can
// restore the clips; ctx bounds the wait for it.
func (c *Controller) ClearStorage(ctx context.Context) error {
	var result chan error
	err := c.Do(func() error {
		c.engine.StopAll(true)

		c.original = nil
		c.mimic = nil
		c.engine.Refresh()

		c.originalStatus = statusOriginalReady
		c.mimicStatus = statusMimicReady
		c.transportStatus = transport.StatusIdle

		c.saveGen++
		if c.cfg.Store == nil {
			return nil
		}

		gen := c.saveGen
		st := c.cfg.Store
		result = make(chan error, 1)
		c.enqueueWrite(func(ctx context.Context) {
			err := st.Delete(ctx)
			if err != nil {
				log.Printf("Failed to clear storage: %v", err)
				c.post(func() {
					if gen == c.saveGen {
						c.transportStatus = statusStorageUnavailable
					}
				})
			}
			result <- err
		})
		return nil
	})
	if err != nil || result == nil {
		return err
	}

	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Upload replaces a clip with user-supplied bytes. On failure the previous
// clip is kept.
func (c *Controller) Upload(kind Kind, data []byte, mime string) error {
	return c.Do(func() error {
		if c.recording != nil {
			return ErrRecording
		}

		c.engine.StopAll(true)

		cl, err := newClip(data, mime, c.cfg.WaveformSamples)
		if err != nil {
			log.Printf("Upload of %s failed: %v", kind, err)
			c.setPanelStatus(kind, statusUploadFailed)
			return err
		}

		log.Printf("Uploaded %s: %s, %.2fs", kind, cl.format(), cl.buffer.Duration())
		c.setClip(kind, cl)
		c.setPanelStatus(kind, statusUploaded)
		c.save(statusUploadSaved)
		return nil
	})
}

// FetchClip downloads a clip and uploads it
func (c *Controller) FetchClip(ctx context.Context, kind Kind, url string) error {
	if c.cfg.Fetcher == nil {
		return fmt.Errorf("no fetcher configured")
	}

	data, mime, err := c.cfg.Fetcher.Fetch(ctx, url)
	if err != nil {
		_ = c.Do(func() error {
			c.setPanelStatus(kind, statusUploadFailed)
			return nil
		})
		return fmt.Errorf("failed to fetch %s: %w", kind, err)
	}
	return c.Upload(kind, data, mime)
}

// Download returns the raw clip with a suggested filename
func (c *Controller) Download(kind Kind) (filename string, data []byte, mime string, err error) {
	err = c.Do(func() error {
		cl := c.clip(kind)
		if cl == nil {
			return fmt.Errorf("%w: %s", ErrNoClip, kind)
		}
		filename = encode.Filename(string(kind), cl.mime, time.Now())
		data = cl.data
		mime = cl.mime
		return nil
	})
	return filename, data, mime, err
}

// ExportReversed encodes the reversed clip as WAV
func (c *Controller) ExportReversed(kind Kind) (filename string, data []byte, err error) {
	var rev *audio.Buffer
	err = c.Do(func() error {
		cl := c.clip(kind)
		if cl == nil {
			return fmt.Errorf("%w: %s", ErrNoClip, kind)
		}
		rev = cl.reversed
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	data, err = encode.WAV(rev)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode reversed %s: %w", kind, err)
	}
	filename = encode.Filename(string(kind)+"-reverse", "audio/wav", time.Now())
	return filename, data, nil
}

// Preview plays a whole buffer from the start
func (c *Controller) Preview(sel transport.Selection) error {
	return c.Do(func() error {
		if c.recording != nil {
			return ErrRecording
		}

		err := c.engine.PlayPreview(sel, "")
		if errors.Is(err, transport.ErrSourceNotReady) {
			if sel == transport.Original || sel == transport.OriginalReverse {
				c.originalStatus = statusRecordOriginalFirst
			} else {
				c.mimicStatus = statusRecordMimicFirst
			}
			return fmt.Errorf("%w: %s", ErrNoClip, sel)
		}
		return err
	})
}

// StopPlayback stops the preview and both tracks, keeping track positions
func (c *Controller) StopPlayback() error {
	return c.Do(func() error {
		c.engine.StopAll(false)
		c.transportStatus = transport.StatusIdle
		return nil
	})
}

// Play starts a track
func (c *Controller) Play(id transport.TrackID) error {
	return c.track(func() error { return c.engine.Play(id) })
}

// Pause pauses a track
func (c *Controller) Pause(id transport.TrackID) error {
	return c.track(func() error { return c.engine.Pause(id) })
}

// Toggle plays or pauses a track
func (c *Controller) Toggle(id transport.TrackID) error {
	return c.track(func() error { return c.engine.Toggle(id) })
}

// StopTrack stops and rewinds a track
func (c *Controller) StopTrack(id transport.TrackID) error {
	return c.track(func() error { return c.engine.Stop(id) })
}

// Seek moves a track to seconds
func (c *Controller) Seek(id transport.TrackID, seconds float64) error {
	return c.track(func() error { return c.engine.Seek(id, seconds) })
}

// SeekBy moves a track relative to its current position
func (c *Controller) SeekBy(id transport.TrackID, delta float64) error {
	return c.track(func() error {
		return c.engine.Seek(id, c.engine.Snapshot(id).Offset+delta)
	})
}

// SwitchSource changes a track's buffer
func (c *Controller) SwitchSource(id transport.TrackID, sel transport.Selection) error {
	return c.track(func() error { return c.engine.SwitchSource(id, sel) })
}

// CycleSource switches a track to its other allowed selection
func (c *Controller) CycleSource(id transport.TrackID) error {
	return c.track(func() error {
		if _, err := transport.ParseTrackID(string(id)); err != nil {
			return err
		}
		current := c.engine.Snapshot(id).Selection
		for _, sel := range transport.Allowed(id) {
			if sel != current {
				return c.engine.SwitchSource(id, sel)
			}
		}
		return nil
	})
}

// track runs a track operation unless a recording disables the controls
func (c *Controller) track(fn func() error) error {
	return c.Do(func() error {
		if c.recording != nil {
			return ErrRecording
		}
		return fn()
	})
}
