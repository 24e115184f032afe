// ABOUTME: Bubbletea model for the game TUI
// ABOUTME: Renders clip panels and comparison tracks, maps keys to commands
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/version"
	"github.com/harperreed/flipit/pkg/clock"
	"github.com/harperreed/flipit/pkg/render"
	"github.com/harperreed/flipit/pkg/transport"
)

const (
	// seekStep is how far the arrow keys move a track
	seekStep = 5.0

	waveformRows = 4
	minWidth     = 24
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	recordingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	trackStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	playheadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("166"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// previewKeys maps 1-4 onto the four whole-clip previews
var previewKeys = map[string]transport.Selection{
	"1": transport.Original,
	"2": transport.OriginalReverse,
	"3": transport.Mimic,
	"4": transport.MimicReverse,
}

// Model represents the TUI state
type Model struct {
	state    app.State
	hasState bool

	ctrl *Control

	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StateMsg:
		m.state = app.State(msg)
		m.hasState = true
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 || !m.hasState {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderPanel(m.state.Original, "Original"))
	b.WriteString(m.renderPanel(m.state.Mimic, "Mimic"))
	b.WriteString(m.renderTransport())
	for _, id := range transport.Tracks {
		b.WriteString(m.renderTrack(id))
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) innerWidth() int {
	w := m.width - 2
	if w < minWidth {
		w = minWidth
	}
	return w
}

// renderHeader renders the title and version
func (m Model) renderHeader() string {
	return titleStyle.Render(version.Product) + " " +
		helpStyle.Render("v"+version.Version) + "\n\n"
}

// renderPanel renders one clip's duration, format and status
func (m Model) renderPanel(p app.Panel, title string) string {
	status := valueStyle.Render(p.Status)
	if m.state.RecordingActive && m.state.RecordingKind == p.Kind {
		status = recordingStyle.Render("● " + p.Status)
	}

	return fmt.Sprintf("%s %s  %s %s  %s\n",
		headerStyle.Render(fmt.Sprintf("%-9s", title+":")),
		valueStyle.Render(p.DurationText),
		headerStyle.Render("Format:"),
		valueStyle.Render(truncate(p.Format, 24)),
		status,
	)
}

// renderTransport renders the shared status line
func (m Model) renderTransport() string {
	status := m.state.TransportStatus
	style := valueStyle
	if m.state.RecordingActive {
		style = recordingStyle
	}
	return "\n" + headerStyle.Render("Status: ") + style.Render(status) + "\n\n"
}

// renderTrack renders a track header, its waveform and the scrub bar
func (m Model) renderTrack(id transport.TrackID) string {
	t, ok := m.state.Track(id)
	if !ok {
		return ""
	}
	width := m.innerWidth()

	var b strings.Builder
	b.WriteString(trackStyle.Render("Track " + string(id)))
	b.WriteString(fmt.Sprintf(" %s %s  %s / %s\n",
		stateIcon(t),
		valueStyle.Render(selectionName(t.Selection)),
		clock.FormatTime(t.Offset),
		clock.FormatTime(t.Duration),
	))

	for _, row := range render.Terminal(m.state.View(id), width, waveformRows) {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString(scrubBar(t, width))
	b.WriteString("\n\n")
	return b.String()
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	record := "r/m:Record"
	if m.state.RecordingActive {
		record = "r/m:Stop recording"
	}
	lines := []string{
		record + "  1-4:Preview  space:Stop preview  c:Clear  q:Quit",
		"a/b:Play/pause  A/B:Stop  ←/→:Seek A  ,/.:Seek B  tab/shift+tab:Source A/B",
	}
	return helpStyle.Render(strings.Join(lines, "\n")) + "\n"
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if sel, ok := previewKeys[key]; ok {
		m.send(Command{Action: ActionPreview, Selection: sel})
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		if m.ctrl != nil {
			select {
			case m.ctrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "r":
		m.send(Command{Action: ActionRecord, Kind: app.KindOriginal})
	case "m":
		m.send(Command{Action: ActionRecord, Kind: app.KindMimic})
	case " ":
		m.send(Command{Action: ActionStopPlayback})
	case "a":
		m.send(Command{Action: ActionToggle, Track: transport.TrackA})
	case "b":
		m.send(Command{Action: ActionToggle, Track: transport.TrackB})
	case "A":
		m.send(Command{Action: ActionStop, Track: transport.TrackA})
	case "B":
		m.send(Command{Action: ActionStop, Track: transport.TrackB})
	case "left":
		m.send(Command{Action: ActionSeekBy, Track: transport.TrackA, Delta: -seekStep})
	case "right":
		m.send(Command{Action: ActionSeekBy, Track: transport.TrackA, Delta: seekStep})
	case ",":
		m.send(Command{Action: ActionSeekBy, Track: transport.TrackB, Delta: -seekStep})
	case ".":
		m.send(Command{Action: ActionSeekBy, Track: transport.TrackB, Delta: seekStep})
	case "tab":
		m.send(Command{Action: ActionCycleSource, Track: transport.TrackA})
	case "shift+tab":
		m.send(Command{Action: ActionCycleSource, Track: transport.TrackB})
	case "c":
		m.send(Command{Action: ActionClear})
	}

	return m, nil
}

// send forwards a command without blocking the UI
func (m Model) send(cmd Command) {
	if m.ctrl == nil {
		return
	}
	select {
	case m.ctrl.Commands <- cmd:
	default:
	}
}

func stateIcon(t transport.TrackSnapshot) string {
	if !t.Enabled {
		return "·"
	}
	switch t.State {
	case transport.Playing:
		return "▶"
	case transport.Paused:
		return "⏸"
	}
	return "■"
}

func selectionName(sel transport.Selection) string {
	switch sel {
	case transport.Original:
		return "original"
	case transport.OriginalReverse:
		return "original reversed"
	case transport.Mimic:
		return "mimic"
	case transport.MimicReverse:
		return "mimic reversed"
	}
	return string(sel)
}

// scrubBar draws the track position as a marker on a line
func scrubBar(t transport.TrackSnapshot, width int) string {
	if !t.Enabled {
		return helpStyle.Render(strings.Repeat("─", width))
	}
	col := render.PlayheadColumn(t.Progress, width)
	return helpStyle.Render(strings.Repeat("─", col)) +
		playheadStyle.Render("●") +
		helpStyle.Render(strings.Repeat("─", width-col-1))
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
