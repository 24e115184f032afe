// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests state updates, key bindings and rendering
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/version"
	"github.com/harperreed/flipit/pkg/transport"
)

func testState() app.State {
	peaks := make([]float32, 32)
	for i := range peaks {
		peaks[i] = float32(i%8) / 8
	}
	return app.State{
		Original:        app.Panel{Kind: app.KindOriginal, Present: true, Duration: 4, DurationText: "00:04", Format: "audio/wav", Status: "Recorded."},
		Mimic:           app.Panel{Kind: app.KindMimic, DurationText: "--:--", Format: "--", Status: "Record your attempt."},
		TransportStatus: "Track A playing.",
		Tracks: []transport.TrackSnapshot{
			{ID: transport.TrackA, Selection: transport.Original, State: transport.Playing, Offset: 1, Duration: 4, Progress: 0.25, Enabled: true},
			{ID: transport.TrackB, Selection: transport.OriginalReverse, State: transport.Stopped, Duration: 4, Enabled: true},
		},
		Waveforms:  app.Waveforms{Original: peaks},
		MaxSeconds: 120,
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)

	if model.hasState {
		t.Error("expected no state initially")
	}
	if got := model.View(); got != "Loading..." {
		t.Errorf("expected Loading..., got %q", got)
	}
}

func TestStateMsg(t *testing.T) {
	model := NewModel(nil)

	updated, _ := model.Update(StateMsg(testState()))
	m := updated.(Model)

	if !m.hasState {
		t.Fatal("expected state after StateMsg")
	}
	if m.state.TransportStatus != "Track A playing." {
		t.Errorf("expected transport status, got %q", m.state.TransportStatus)
	}
}

func TestWindowSize(t *testing.T) {
	model := NewModel(nil)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m := updated.(Model)

	if m.width != 80 || m.height != 40 {
		t.Errorf("expected 80x40, got %dx%d", m.width, m.height)
	}
}

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		key      string
		expected Command
	}{
		{"r", Command{Action: ActionRecord, Kind: app.KindOriginal}},
		{"m", Command{Action: ActionRecord, Kind: app.KindMimic}},
		{"1", Command{Action: ActionPreview, Selection: transport.Original}},
		{"2", Command{Action: ActionPreview, Selection: transport.OriginalReverse}},
		{"3", Command{Action: ActionPreview, Selection: transport.Mimic}},
		{"4", Command{Action: ActionPreview, Selection: transport.MimicReverse}},
		{" ", Command{Action: ActionStopPlayback}},
		{"a", Command{Action: ActionToggle, Track: transport.TrackA}},
		{"b", Command{Action: ActionToggle, Track: transport.TrackB}},
		{"A", Command{Action: ActionStop, Track: transport.TrackA}},
		{"B", Command{Action: ActionStop, Track: transport.TrackB}},
		{"left", Command{Action: ActionSeekBy, Track: transport.TrackA, Delta: -5}},
		{"right", Command{Action: ActionSeekBy, Track: transport.TrackA, Delta: 5}},
		{",", Command{Action: ActionSeekBy, Track: transport.TrackB, Delta: -5}},
		{".", Command{Action: ActionSeekBy, Track: transport.TrackB, Delta: 5}},
		{"tab", Command{Action: ActionCycleSource, Track: transport.TrackA}},
		{"shift+tab", Command{Action: ActionCycleSource, Track: transport.TrackB}},
		{"c", Command{Action: ActionClear}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ctrl := NewControl()
			model := NewModel(ctrl)
			model.Update(key(tt.key))

			select {
			case got := <-ctrl.Commands:
				if got != tt.expected {
					t.Errorf("expected %+v, got %+v", tt.expected, got)
				}
			default:
				t.Fatalf("no command sent for %q", tt.key)
			}
		})
	}
}

func TestUnboundKeyIsIgnored(t *testing.T) {
	ctrl := NewControl()
	model := NewModel(ctrl)
	model.Update(key("z"))

	select {
	case got := <-ctrl.Commands:
		t.Errorf("expected no command, got %+v", got)
	default:
	}
}

func TestQuit(t *testing.T) {
	ctrl := NewControl()
	model := NewModel(ctrl)

	_, cmd := model.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit signal on control")
	}
}

func TestKeysWithoutControl(t *testing.T) {
	model := NewModel(nil)
	// Must not block or panic
	model.Update(key("a"))
	model.Update(key("q"))
}

func TestView(t *testing.T) {
	model := NewModel(nil)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 60, Height: 40})
	updated, _ = updated.Update(StateMsg(testState()))
	view := updated.View()

	for _, want := range []string{
		version.Product,
		"Track A",
		"Track B",
		"00:01 / 00:04",
		"original reversed",
		"Record your attempt.",
		"Track A playing.",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestViewRecording(t *testing.T) {
	st := testState()
	st.RecordingActive = true
	st.RecordingKind = app.KindMimic
	st.Mimic.Status = "Recording..."

	model := NewModel(nil)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 60, Height: 40})
	updated, _ = updated.Update(StateMsg(st))
	view := updated.View()

	if !strings.Contains(view, "● Recording...") {
		t.Error("expected recording marker on the mimic panel")
	}
	if !strings.Contains(view, "Stop recording") {
		t.Error("expected help to offer stopping the recording")
	}
}

func TestScrubBar(t *testing.T) {
	bar := scrubBar(transport.TrackSnapshot{Enabled: true, Progress: 0.5}, 11)
	if !strings.Contains(bar, "●") {
		t.Error("expected playhead marker")
	}

	bar = scrubBar(transport.TrackSnapshot{}, 11)
	if strings.Contains(bar, "●") {
		t.Error("disabled track should not show a playhead")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("audio/ogg;codecs=opus-long-name", 10); got != "audio/o..." {
		t.Errorf("expected audio/o..., got %s", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected short, got %s", got)
	}
}
