// ABOUTME: Transport type definitions
// ABOUTME: Track identifiers, source selections, states and snapshots
package transport

import (
	"errors"
	"fmt"

	"github.com/harperreed/flipit/pkg/audio"
)

var (
	// ErrUnknownTrack is returned for track ids other than A and B
	ErrUnknownTrack = errors.New("unknown track")

	// ErrSelectionNotAllowed is returned when a track cannot play a selection
	ErrSelectionNotAllowed = errors.New("selection not allowed on track")

	// ErrSourceNotReady is returned when a preview has no buffer to play
	ErrSourceNotReady = errors.New("source not ready")
)

// TrackID names one of the two comparison tracks
type TrackID string

const (
	TrackA TrackID = "A"
	TrackB TrackID = "B"
)

// Tracks lists the tracks in display order
var Tracks = []TrackID{TrackA, TrackB}

// ParseTrackID accepts "A"/"B" in either case
func ParseTrackID(s string) (TrackID, error) {
	switch s {
	case "A", "a":
		return TrackA, nil
	case "B", "b":
		return TrackB, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTrack, s)
}

// Selection names one of the four playable buffers
type Selection string

const (
	Original        Selection = "original"
	OriginalReverse Selection = "originalReverse"
	MimicReverse    Selection = "mimicReverse"
	Mimic           Selection = "mimic"
)

// Selections lists every selection in display order
var Selections = []Selection{Original, OriginalReverse, MimicReverse, Mimic}

// ParseSelection validates a selection name
func ParseSelection(s string) (Selection, error) {
	switch sel := Selection(s); sel {
	case Original, OriginalReverse, MimicReverse, Mimic:
		return sel, nil
	}
	return "", fmt.Errorf("unknown selection %q", s)
}

// allowed is each track's source set; the first entry is the default
var allowed = map[TrackID][]Selection{
	TrackA: {Original, MimicReverse},
	TrackB: {OriginalReverse, Mimic},
}

// Allowed returns the selections a track may play
func Allowed(id TrackID) []Selection {
	return append([]Selection(nil), allowed[id]...)
}

// DefaultSelection returns the selection a track starts on
func DefaultSelection(id TrackID) Selection {
	return allowed[id][0]
}

// IsAllowed reports whether id may play sel
func IsAllowed(id TrackID, sel Selection) bool {
	for _, s := range allowed[id] {
		if s == sel {
			return true
		}
	}
	return false
}

// PreviewLabel is the status shown while a whole clip previews
func PreviewLabel(sel Selection) string {
	switch sel {
	case Original:
		return "Playing original."
	case OriginalReverse:
		return "Playing reverse."
	case Mimic:
		return "Playing mimic."
	case MimicReverse:
		return "Playing mimic reverse."
	}
	return "Playing."
}

// State is a track's transport state
type State int

const (
	Stopped State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	default:
		return "stopped"
	}
}

// MarshalText encodes the state name for JSON
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "stopped":
		*s = Stopped
	case "paused":
		*s = Paused
	case "playing":
		*s = Playing
	default:
		return fmt.Errorf("unknown transport state %q", b)
	}
	return nil
}

// Library resolves selections to decoded buffers. It returns nil when
// nothing is bound to the selection.
type Library interface {
	Buffer(sel Selection) *audio.Buffer
}

// TrackSnapshot is the displayable state of one track
type TrackSnapshot struct {
	ID        TrackID   `json:"id"`
	Selection Selection `json:"selection"`
	State     State     `json:"state"`
	Offset    float64   `json:"offset"`
	Duration  float64   `json:"duration"`
	Progress  float64   `json:"progress"`
	Enabled   bool      `json:"enabled"`
}

// Status texts shown in the transport line
const (
	StatusIdle = "No playback running."
)

func statusPlaying(id TrackID) string  { return fmt.Sprintf("Track %s playing.", id) }
func statusPaused(id TrackID) string   { return fmt.Sprintf("Track %s paused.", id) }
func statusStopped(id TrackID) string  { return fmt.Sprintf("Track %s stopped.", id) }
func statusNotReady(id TrackID) string { return fmt.Sprintf("Track %s source not ready.", id) }
