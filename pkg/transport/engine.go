// ABOUTME: Dual-track transport engine
// ABOUTME: Play/pause/stop/seek/source-switch state machines sharing one sink
package transport

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/harperreed/flipit/pkg/audio"
	"github.com/harperreed/flipit/pkg/audio/output"
)

// DefaultTickInterval is the progress polling period (about one frame at 60Hz)
const DefaultTickInterval = 16 * time.Millisecond

// Config wires an engine to its collaborators
type Config struct {
	Sink    output.Sink
	Library Library

	// Dispatch runs sink completions and ticks on the owner's event loop.
	// The default calls fn directly, which is only safe when the sink calls
	// back on the same goroutine that drives the engine.
	Dispatch func(fn func())

	// TickInterval is the progress polling period. Zero means
	// DefaultTickInterval; negative disables the ticker and leaves Tick to
	// the caller.
	TickInterval time.Duration

	OnStatus   func(status string)
	OnProgress func(snap TrackSnapshot)
}

type track struct {
	id        TrackID
	selection Selection
	state     State
	handle    output.Handle
	gen       uint64
	startTime float64
	offset    float64
	stopTick  chan struct{}
}

// Engine drives both tracks and the preview player. At most one handle is
// live on the sink at any time. Engine is not safe for concurrent use; all
// calls must come from one goroutine.
type Engine struct {
	cfg        Config
	tracks     map[TrackID]*track
	preview    output.Handle
	previewGen uint64
	gen        uint64
}

// NewEngine creates an engine with both tracks stopped on their default sources
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if cfg.Library == nil {
		return nil, fmt.Errorf("library is required")
	}
	if cfg.Dispatch == nil {
		cfg.Dispatch = func(fn func()) { fn() }
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	e := &Engine{
		cfg:    cfg,
		tracks: make(map[TrackID]*track, len(Tracks)),
	}
	for _, id := range Tracks {
		e.tracks[id] = &track{id: id, selection: DefaultSelection(id)}
	}
	return e, nil
}

// Play starts a track from its stored offset, stopping every other playback
func (e *Engine) Play(id TrackID) error {
	t, err := e.track(id)
	if err != nil {
		return err
	}

	buf := e.buffer(t)
	if buf == nil {
		e.status(statusNotReady(id))
		return nil
	}

	return e.start(t, buf)
}

// Pause freezes a playing track at its current position
func (e *Engine) Pause(id TrackID) error {
	t, err := e.track(id)
	if err != nil {
		return err
	}
	if t.state != Playing {
		return nil
	}

	t.offset = math.Max(0, e.cfg.Sink.Now()-t.startTime)
	e.detach(t)
	t.state = Paused

	e.status(statusPaused(id))
	e.notify(t)
	return nil
}

// Toggle pauses a playing track and plays any other
func (e *Engine) Toggle(id TrackID) error {
	t, err := e.track(id)
	if err != nil {
		return err
	}
	if t.state == Playing {
		return e.Pause(id)
	}
	return e.Play(id)
}

// Stop halts a track and rewinds it
func (e *Engine) Stop(id TrackID) error {
	t, err := e.track(id)
	if err != nil {
		return err
	}

	e.halt(t, true)
	e.status(statusStopped(id))
	return nil
}

// Seek moves a track to seconds, clamped to the bound buffer. A playing
// track restarts at the new position. Without a buffer nothing changes.
func (e *Engine) Seek(id TrackID, seconds float64) error {
	t, err := e.track(id)
	if err != nil {
		return err
	}

	buf := e.buffer(t)
	if buf == nil {
		return nil
	}

	target := clamp(seconds, buf.Duration())
	if t.state == Playing {
		e.detach(t)
		t.state = Paused
		t.offset = target
		return e.start(t, buf)
	}

	t.offset = target
	e.notify(t)
	return nil
}

// SwitchSource changes the buffer a track plays while keeping its position
func (e *Engine) SwitchSource(id TrackID, sel Selection) error {
	t, err := e.track(id)
	if err != nil {
		return err
	}
	if !IsAllowed(id, sel) {
		return fmt.Errorf("%w: %s on track %s", ErrSelectionNotAllowed, sel, id)
	}

	wasPlaying := t.state == Playing
	current := t.offset
	if wasPlaying {
		current = math.Max(0, e.cfg.Sink.Now()-t.startTime)
		e.detach(t)
		t.state = Paused
	}

	t.selection = sel
	buf := e.buffer(t)
	if buf == nil {
		t.state = Stopped
		if wasPlaying {
			t.offset = 0
		} else {
			t.offset = current
		}
		e.notify(t)
		return nil
	}

	t.offset = math.Min(current, buf.Duration())
	if wasPlaying {
		return e.start(t, buf)
	}

	e.notify(t)
	return nil
}

// PlayPreview plays a whole buffer from the start under a status label.
// An empty label uses PreviewLabel(sel).
func (e *Engine) PlayPreview(sel Selection, label string) error {
	buf := playable(e.cfg.Library.Buffer(sel))
	if buf == nil {
		return fmt.Errorf("%w: %s", ErrSourceNotReady, sel)
	}
	if label == "" {
		label = PreviewLabel(sel)
	}

	e.StopAll(false)

	e.gen++
	gen := e.gen
	h, err := e.cfg.Sink.Start(buf, 0, func() {
		e.cfg.Dispatch(func() { e.previewEnded(gen) })
	})
	if err != nil {
		log.Printf("Failed to start preview %s: %v", sel, err)
		return fmt.Errorf("failed to start preview: %w", err)
	}

	e.preview = h
	e.previewGen = gen
	e.status(label)
	return nil
}

// StopPreview stops the preview player if it is running
func (e *Engine) StopPreview() {
	if e.preview != nil {
		e.preview.Stop()
		e.preview = nil
	}
	e.previewGen = 0
}

// PreviewActive reports whether the preview player is running
func (e *Engine) PreviewActive() bool {
	return e.preview != nil
}

// StopAll stops the preview and both tracks. Playing tracks keep their
// position unless resetOffsets rewinds everything to zero.
func (e *Engine) StopAll(resetOffsets bool) {
	e.StopPreview()
	for _, id := range Tracks {
		e.halt(e.tracks[id], resetOffsets)
	}
}

// Refresh re-reads the library after clips change and republishes both tracks
func (e *Engine) Refresh() {
	for _, id := range Tracks {
		t := e.tracks[id]
		if t.state == Playing && e.buffer(t) == nil {
			e.halt(t, true)
			continue
		}
		e.notify(t)
	}
}

// Tick updates the position of every playing track
func (e *Engine) Tick() {
	for _, id := range Tracks {
		t := e.tracks[id]
		if t.state == Playing {
			e.tick(id, t.gen)
		}
	}
}

// Snapshot returns the displayable state of a track
func (e *Engine) Snapshot(id TrackID) TrackSnapshot {
	t, ok := e.tracks[id]
	if !ok {
		return TrackSnapshot{ID: id}
	}
	return e.snapshot(t)
}

// Snapshots returns both tracks in display order
func (e *Engine) Snapshots() []TrackSnapshot {
	out := make([]TrackSnapshot, 0, len(Tracks))
	for _, id := range Tracks {
		out = append(out, e.snapshot(e.tracks[id]))
	}
	return out
}

func (e *Engine) snapshot(t *track) TrackSnapshot {
	snap := TrackSnapshot{
		ID:        t.id,
		Selection: t.selection,
		State:     t.state,
	}

	buf := e.buffer(t)
	if buf == nil {
		return snap
	}

	duration := buf.Duration()
	offset := t.offset
	if t.state == Playing {
		offset = math.Max(0, e.cfg.Sink.Now()-t.startTime)
	}
	offset = math.Min(offset, duration)

	snap.Offset = offset
	snap.Duration = duration
	snap.Progress = math.Min(offset/duration, 1)
	snap.Enabled = true
	return snap
}

// start plays buf on t from its stored offset (clamped to the duration)
func (e *Engine) start(t *track, buf *audio.Buffer) error {
	e.StopAll(false)

	offset := math.Min(t.offset, buf.Duration())

	e.gen++
	gen := e.gen
	id := t.id
	h, err := e.cfg.Sink.Start(buf, offset, func() {
		e.cfg.Dispatch(func() { e.ended(id, gen) })
	})
	if err != nil {
		log.Printf("Failed to start track %s: %v", id, err)
		e.notify(t)
		return fmt.Errorf("failed to start track %s: %w", id, err)
	}

	t.handle = h
	t.gen = gen
	t.state = Playing
	t.offset = offset
	t.startTime = e.cfg.Sink.Now() - offset

	e.status(statusPlaying(id))
	e.notify(t)
	e.startTicker(t)
	return nil
}

// detach stops t's handle and ticker without touching its state
func (e *Engine) detach(t *track) {
	if t.handle != nil {
		t.handle.Stop()
		t.handle = nil
	}
	t.gen = 0
	e.stopTicker(t)
}

// halt stops t. A playing track keeps its position and becomes Paused;
// reset rewinds to zero and leaves it Stopped.
func (e *Engine) halt(t *track, reset bool) {
	if t.state == Playing {
		t.offset = math.Max(0, e.cfg.Sink.Now()-t.startTime)
		t.state = Paused
	}
	e.detach(t)

	if reset {
		t.offset = 0
		t.state = Stopped
	}
	e.notify(t)
}

// ended handles natural completion; completions from replaced handles are ignored
func (e *Engine) ended(id TrackID, gen uint64) {
	t := e.tracks[id]
	if t.gen != gen || t.handle == nil {
		return
	}

	e.halt(t, true)
	e.status(StatusIdle)
}

func (e *Engine) previewEnded(gen uint64) {
	if e.preview == nil || e.previewGen != gen {
		return
	}
	e.preview = nil
	e.previewGen = 0
	e.status(StatusIdle)
}

func (e *Engine) tick(id TrackID, gen uint64) {
	t := e.tracks[id]
	if t.gen != gen || t.state != Playing {
		return
	}

	buf := e.buffer(t)
	if buf == nil {
		e.halt(t, true)
		return
	}

	t.offset = math.Min(math.Max(0, e.cfg.Sink.Now()-t.startTime), buf.Duration())
	e.notify(t)
}

func (e *Engine) startTicker(t *track) {
	if e.cfg.TickInterval < 0 {
		return
	}

	stop := make(chan struct{})
	t.stopTick = stop
	id := t.id
	gen := t.gen
	interval := e.cfg.TickInterval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.cfg.Dispatch(func() { e.tick(id, gen) })
			}
		}
	}()
}

func (e *Engine) stopTicker(t *track) {
	if t.stopTick != nil {
		close(t.stopTick)
		t.stopTick = nil
	}
}

func (e *Engine) track(id TrackID) (*track, error) {
	t, ok := e.tracks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrack, id)
	}
	return t, nil
}

// buffer returns the playable buffer bound to t's selection
func (e *Engine) buffer(t *track) *audio.Buffer {
	return playable(e.cfg.Library.Buffer(t.selection))
}

func (e *Engine) status(s string) {
	if e.cfg.OnStatus != nil {
		e.cfg.OnStatus(s)
	}
}

func (e *Engine) notify(t *track) {
	if e.cfg.OnProgress != nil {
		e.cfg.OnProgress(e.snapshot(t))
	}
}

// playable filters out buffers with no duration
func playable(buf *audio.Buffer) *audio.Buffer {
	if buf == nil || buf.Duration() <= 0 {
		return nil
	}
	return buf
}

// clamp limits seconds to [0, limit]; NaN maps to 0
func clamp(seconds, limit float64) float64 {
	if math.IsNaN(seconds) || seconds < 0 {
		return 0
	}
	if seconds > limit {
		return limit
	}
	return seconds
}
