// ABOUTME: Application view model
// ABOUTME: Clip kinds, panels and the snapshot published to every surface
package app

import (
	"fmt"

	"github.com/harperreed/flipit/pkg/render"
	"github.com/harperreed/flipit/pkg/transport"
)

// Kind names one of the two clips
type Kind string

const (
	KindOriginal Kind = "original"
	KindMimic    Kind = "mimic"
)

// ParseKind validates a clip kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindOriginal, KindMimic:
		return k, nil
	}
	return "", fmt.Errorf("unknown clip kind %q", s)
}

// Status texts
const (
	statusOriginalReady        = "Ready."
	statusMimicReady           = "Record your attempt."
	statusRecordingPanel       = "Recording..."
	statusProcessing           = "Processing..."
	statusRecorded             = "Recorded."
	statusRecordingFailed      = "Recording failed."
	statusRecordingSaved       = "Recording saved."
	statusUploaded             = "Uploaded."
	statusUploadFailed         = "Upload failed."
	statusUploadSaved          = "Upload saved."
	statusLoaded               = "Loaded from local storage."
	statusStorageUnavailable   = "Local storage unavailable."
	statusMicDenied            = "Microphone access denied."
	statusRecordingUnsupported = "Recording not supported."
	statusRecordOriginalFirst  = "Record something first."
	statusRecordMimicFirst     = "Record your mimic first."
	statusNoDuration           = "--:--"
	statusNoFormat             = "--"
)

// Panel is the displayable state of one clip
type Panel struct {
	Kind         Kind    `json:"kind"`
	Present      bool    `json:"present"`
	Duration     float64 `json:"duration"`
	DurationText string  `json:"durationText"`
	Format       string  `json:"format"`
	Status       string  `json:"status"`
}

// Waveforms holds the peak arrays for each clip; nil when absent
type Waveforms struct {
	Original []float32 `json:"original"`
	Mimic    []float32 `json:"mimic"`
}

// State is the full view model. Slices are shared and must not be modified.
type State struct {
	Session          string                    `json:"session"`
	Original         Panel                     `json:"original"`
	Mimic            Panel                     `json:"mimic"`
	TransportStatus  string                    `json:"transportStatus"`
	Tracks           []transport.TrackSnapshot `json:"tracks"`
	Waveforms        Waveforms                 `json:"waveforms"`
	PreviewActive    bool                      `json:"previewActive"`
	RecordingActive  bool                      `json:"recordingActive"`
	RecordingKind    Kind                      `json:"recordingKind,omitempty"`
	RecordingElapsed float64                   `json:"recordingElapsed"`
	MaxSeconds       int                       `json:"maxSeconds"`
}

// Panel returns the panel for kind
func (s State) Panel(kind Kind) Panel {
	if kind == KindMimic {
		return s.Mimic
	}
	return s.Original
}

// Track returns the snapshot for id
func (s State) Track(id transport.TrackID) (transport.TrackSnapshot, bool) {
	for _, t := range s.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return transport.TrackSnapshot{}, false
}

// View builds the renderer input for a track
func (s State) View(id transport.TrackID) render.TrackView {
	sel := transport.DefaultSelection(id)
	if t, ok := s.Track(id); ok {
		sel = t.Selection
	}
	return render.NewTrackView(id, sel, s.Waveforms.Original, s.Waveforms.Mimic)
}
