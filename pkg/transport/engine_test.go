// ABOUTME: Tests for the transport engine
// ABOUTME: Drives both tracks with a fake sink and fake clock
package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/flipit/pkg/audio"
	"github.com/harperreed/flipit/pkg/audio/output"
	"github.com/harperreed/flipit/pkg/clock"
)

type mapLibrary map[Selection]*audio.Buffer

func (m mapLibrary) Buffer(sel Selection) *audio.Buffer {
	return m[sel]
}

type harness struct {
	engine   *Engine
	sink     *output.Fake
	clock    *clock.Fake
	lib      mapLibrary
	statuses []string
	progress []TrackSnapshot
}

func (h *harness) lastStatus() string {
	if len(h.statuses) == 0 {
		return ""
	}
	return h.statuses[len(h.statuses)-1]
}

func seconds(s int) *audio.Buffer {
	return audio.NewBuffer(1, s*100, 100)
}

// newHarness binds a 10s original and a 4s mimic with reversals
func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		clock: clock.NewFake(100),
		lib: mapLibrary{
			Original:        seconds(10),
			OriginalReverse: seconds(10),
			Mimic:           seconds(4),
			MimicReverse:    seconds(4),
		},
	}
	h.sink = output.NewFake(h.clock)

	eng, err := NewEngine(Config{
		Sink:         h.sink,
		Library:      h.lib,
		TickInterval: -1,
		OnStatus:     func(s string) { h.statuses = append(h.statuses, s) },
		OnProgress:   func(s TrackSnapshot) { h.progress = append(h.progress, s) },
	})
	require.NoError(t, err)
	h.engine = eng
	return h
}

func TestNewEngineRequiresCollaborators(t *testing.T) {
	_, err := NewEngine(Config{Library: mapLibrary{}})
	assert.Error(t, err)

	_, err = NewEngine(Config{Sink: output.NewFake(nil)})
	assert.Error(t, err)
}

func TestDefaultSelections(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, Original, h.engine.Snapshot(TrackA).Selection)
	assert.Equal(t, OriginalReverse, h.engine.Snapshot(TrackB).Selection)
	assert.Equal(t, Stopped, h.engine.Snapshot(TrackA).State)
}

func TestPlayStartsAtOffset(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Seek(TrackA, 3))
	require.NoError(t, h.engine.Play(TrackA))

	last := h.sink.Last()
	require.NotNil(t, last)
	assert.Equal(t, 3.0, last.Offset)
	assert.Equal(t, Playing, h.engine.Snapshot(TrackA).State)
	assert.Equal(t, "Track A playing.", h.lastStatus())

	h.clock.Advance(2)
	assert.InDelta(t, 5.0, h.engine.Snapshot(TrackA).Offset, 1e-9)
}

func TestPlayStopsOtherPlayback(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.PlayPreview(Mimic, ""))
	preview := h.sink.Last()

	require.NoError(t, h.engine.Play(TrackB))
	b := h.sink.Last()
	h.clock.Advance(1.5)

	require.NoError(t, h.engine.Play(TrackA))

	assert.True(t, preview.Stopped())
	assert.True(t, b.Stopped())
	assert.False(t, h.engine.PreviewActive())
	assert.Len(t, h.sink.Live(), 1)

	snapB := h.engine.Snapshot(TrackB)
	assert.Equal(t, Paused, snapB.State)
	assert.InDelta(t, 1.5, snapB.Offset, 1e-9)
}

func TestPauseKeepsOffset(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackA))
	h.clock.Advance(2.25)
	require.NoError(t, h.engine.Pause(TrackA))

	snap := h.engine.Snapshot(TrackA)
	assert.Equal(t, Paused, snap.State)
	assert.InDelta(t, 2.25, snap.Offset, 1e-9)
	assert.Equal(t, "Track A paused.", h.lastStatus())
	assert.True(t, h.sink.Last().Stopped())

	h.clock.Advance(5)
	require.NoError(t, h.engine.Play(TrackA))
	assert.InDelta(t, 2.25, h.sink.Last().Offset, 1e-9)
}

func TestPauseWhenNotPlayingIsNoop(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Pause(TrackA))

	assert.Empty(t, h.statuses)
	assert.Equal(t, Stopped, h.engine.Snapshot(TrackA).State)
}

func TestToggle(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Toggle(TrackB))
	assert.Equal(t, Playing, h.engine.Snapshot(TrackB).State)

	require.NoError(t, h.engine.Toggle(TrackB))
	assert.Equal(t, Paused, h.engine.Snapshot(TrackB).State)
}

func TestStopRewinds(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackA))
	h.clock.Advance(4)
	require.NoError(t, h.engine.Stop(TrackA))

	snap := h.engine.Snapshot(TrackA)
	assert.Equal(t, Stopped, snap.State)
	assert.Equal(t, 0.0, snap.Offset)
	assert.Equal(t, "Track A stopped.", h.lastStatus())
}

func TestSeekClamps(t *testing.T) {
	tests := []struct {
		name     string
		target   float64
		expected float64
	}{
		{"negative", -5, 0},
		{"inside", 4.5, 4.5},
		{"past end", 999, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.engine.Seek(TrackA, tt.target))

			offset := h.engine.Snapshot(TrackA).Offset
			if offset != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, offset)
			}
		})
	}
}

func TestSeekWhilePlayingRestarts(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackA))
	first := h.sink.Last()
	h.clock.Advance(1)

	require.NoError(t, h.engine.Seek(TrackA, 7))

	assert.True(t, first.Stopped())
	assert.Equal(t, 7.0, h.sink.Last().Offset)
	assert.Equal(t, Playing, h.engine.Snapshot(TrackA).State)
	assert.InDelta(t, 7.0, h.engine.Snapshot(TrackA).Offset, 1e-9)
}

func TestSeekWithoutBufferIsNoop(t *testing.T) {
	h := newHarness(t)
	delete(h.lib, Original)

	require.NoError(t, h.engine.Seek(TrackA, 3))

	assert.Equal(t, 0.0, h.engine.Snapshot(TrackA).Offset)
	assert.Empty(t, h.progress)
}

func TestPlayNotReady(t *testing.T) {
	h := newHarness(t)
	delete(h.lib, OriginalReverse)

	require.NoError(t, h.engine.Play(TrackB))

	assert.Equal(t, "Track B source not ready.", h.lastStatus())
	assert.Empty(t, h.sink.Handles())
	assert.False(t, h.engine.Snapshot(TrackB).Enabled)
}

func TestEmptyBufferIsNotReady(t *testing.T) {
	h := newHarness(t)
	h.lib[Original] = audio.NewBuffer(1, 0, 48000)

	require.NoError(t, h.engine.Play(TrackA))

	assert.Equal(t, "Track A source not ready.", h.lastStatus())
}

func TestPlayToEnd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackA))
	h.clock.Advance(10)
	h.sink.Last().End()

	snap := h.engine.Snapshot(TrackA)
	assert.Equal(t, Stopped, snap.State)
	assert.Equal(t, 0.0, snap.Offset)
	assert.Equal(t, StatusIdle, h.lastStatus())
}

func TestStaleCompletionIgnored(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackA))
	stale := h.sink.Last()
	h.clock.Advance(1)
	require.NoError(t, h.engine.Seek(TrackA, 5))

	stale.End()

	assert.Equal(t, Playing, h.engine.Snapshot(TrackA).State)
	assert.Equal(t, "Track A playing.", h.lastStatus())
}

func TestStalePreviewCompletionIgnored(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.PlayPreview(Original, ""))
	stale := h.sink.Last()
	require.NoError(t, h.engine.PlayPreview(Mimic, "Playing mimic."))

	stale.End()

	assert.True(t, h.engine.PreviewActive())
	assert.Equal(t, "Playing mimic.", h.lastStatus())

	h.sink.Last().End()
	assert.False(t, h.engine.PreviewActive())
	assert.Equal(t, StatusIdle, h.lastStatus())
}

func TestPreviewLabels(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.PlayPreview(OriginalReverse, ""))
	assert.Equal(t, "Playing reverse.", h.lastStatus())
	assert.Equal(t, 0.0, h.sink.Last().Offset)

	require.NoError(t, h.engine.PlayPreview(Mimic, "custom"))
	assert.Equal(t, "custom", h.lastStatus())
}

func TestPreviewNotReady(t *testing.T) {
	h := newHarness(t)
	delete(h.lib, Mimic)

	err := h.engine.PlayPreview(Mimic, "")

	assert.True(t, errors.Is(err, ErrSourceNotReady))
	assert.Empty(t, h.sink.Handles())
}

func TestPreviewPausesPlayingTrack(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackA))
	h.clock.Advance(3)
	require.NoError(t, h.engine.PlayPreview(Mimic, ""))

	snap := h.engine.Snapshot(TrackA)
	assert.Equal(t, Paused, snap.State)
	assert.InDelta(t, 3.0, snap.Offset, 1e-9)
}

func TestSwitchSourceWhilePausedClamps(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Seek(TrackA, 8))
	require.NoError(t, h.engine.SwitchSource(TrackA, MimicReverse))

	snap := h.engine.Snapshot(TrackA)
	assert.Equal(t, MimicReverse, snap.Selection)
	assert.Equal(t, 4.0, snap.Offset)
	assert.Equal(t, 4.0, snap.Duration)
	assert.Empty(t, h.sink.Handles())
}

func TestSwitchSourceWhilePlayingContinues(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackB))
	h.clock.Advance(2)
	require.NoError(t, h.engine.SwitchSource(TrackB, Mimic))

	last := h.sink.Last()
	assert.Same(t, h.lib[Mimic], last.Buffer)
	assert.InDelta(t, 2.0, last.Offset, 1e-9)
	assert.Equal(t, Playing, h.engine.Snapshot(TrackB).State)
	assert.Len(t, h.sink.Live(), 1)
}

func TestSwitchSourceToUnboundWhilePlaying(t *testing.T) {
	h := newHarness(t)
	delete(h.lib, MimicReverse)

	require.NoError(t, h.engine.Play(TrackA))
	h.clock.Advance(2)
	require.NoError(t, h.engine.SwitchSource(TrackA, MimicReverse))

	snap := h.engine.Snapshot(TrackA)
	assert.Equal(t, Stopped, snap.State)
	assert.Equal(t, 0.0, snap.Duration)
	assert.False(t, snap.Enabled)
	assert.Empty(t, h.sink.Live())
}

func TestSwitchSourceNotAllowed(t *testing.T) {
	h := newHarness(t)

	err := h.engine.SwitchSource(TrackA, Mimic)

	assert.True(t, errors.Is(err, ErrSelectionNotAllowed))
	assert.Equal(t, Original, h.engine.Snapshot(TrackA).Selection)
}

func TestUnknownTrack(t *testing.T) {
	h := newHarness(t)

	assert.True(t, errors.Is(h.engine.Play("C"), ErrUnknownTrack))
	assert.True(t, errors.Is(h.engine.Seek("C", 1), ErrUnknownTrack))
}

func TestTickUpdatesAndClamps(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackA))
	h.clock.Advance(12)
	h.progress = nil
	h.engine.Tick()

	require.Len(t, h.progress, 1)
	assert.Equal(t, 10.0, h.progress[0].Offset)
	assert.Equal(t, 1.0, h.progress[0].Progress)
}

func TestTickResetsWhenBufferRemoved(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackA))
	delete(h.lib, Original)
	h.engine.Tick()

	assert.Equal(t, Stopped, h.engine.Snapshot(TrackA).State)
	assert.Empty(t, h.sink.Live())
}

func TestStopAllReset(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Seek(TrackB, 3))
	require.NoError(t, h.engine.Play(TrackA))
	h.engine.StopAll(true)

	for _, snap := range h.engine.Snapshots() {
		assert.Equal(t, Stopped, snap.State, "track %s", snap.ID)
		assert.Equal(t, 0.0, snap.Offset, "track %s", snap.ID)
	}
	assert.Empty(t, h.sink.Live())
}

func TestRefreshStopsUnboundPlayback(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.engine.Play(TrackB))
	delete(h.lib, OriginalReverse)
	h.engine.Refresh()

	assert.Equal(t, Stopped, h.engine.Snapshot(TrackB).State)
	assert.Empty(t, h.sink.Live())
}

func TestStartErrorLeavesTrackIdle(t *testing.T) {
	h := newHarness(t)
	h.sink.StartErr = errors.New("device gone")

	err := h.engine.Play(TrackA)

	assert.Error(t, err)
	assert.NotEqual(t, Playing, h.engine.Snapshot(TrackA).State)
}

func TestDispatchRoutesCompletions(t *testing.T) {
	h := newHarness(t)
	var queued []func()

	eng, err := NewEngine(Config{
		Sink:         h.sink,
		Library:      h.lib,
		TickInterval: -1,
		Dispatch:     func(fn func()) { queued = append(queued, fn) },
	})
	require.NoError(t, err)

	require.NoError(t, eng.Play(TrackA))
	h.sink.Last().End()

	assert.Equal(t, Playing, eng.Snapshot(TrackA).State)
	require.Len(t, queued, 1)

	queued[0]()
	assert.Equal(t, Stopped, eng.Snapshot(TrackA).State)
}

func TestParseHelpers(t *testing.T) {
	id, err := ParseTrackID("b")
	require.NoError(t, err)
	assert.Equal(t, TrackB, id)

	_, err = ParseTrackID("z")
	assert.True(t, errors.Is(err, ErrUnknownTrack))

	sel, err := ParseSelection("mimicReverse")
	require.NoError(t, err)
	assert.Equal(t, MimicReverse, sel)

	_, err = ParseSelection("sideways")
	assert.Error(t, err)

	assert.True(t, IsAllowed(TrackB, Mimic))
	assert.False(t, IsAllowed(TrackB, Original))
	assert.Equal(t, []Selection{Original, MimicReverse}, Allowed(TrackA))
}

func TestStateText(t *testing.T) {
	for _, s := range []State{Stopped, Paused, Playing} {
		b, err := s.MarshalText()
		require.NoError(t, err)

		var got State
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}

	var s State
	assert.Error(t, s.UnmarshalText([]byte("rewinding")))
}

func TestSelectionsParse(t *testing.T) {
	require.Len(t, Selections, 4)
	for _, sel := range Selections {
		got, err := ParseSelection(string(sel))
		require.NoError(t, err)
		assert.Equal(t, sel, got)
	}
}
