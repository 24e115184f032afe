// ABOUTME: Application error taxonomy
// ABOUTME: Every failure is recovered locally and surfaced as status text
package app

import (
	"errors"
	"fmt"

	"github.com/harperreed/flipit/internal/capture"
	"github.com/harperreed/flipit/pkg/audio/decode"
)

var (
	// ErrPermissionDenied means the microphone could not be opened
	ErrPermissionDenied = errors.New("microphone access denied")

	// ErrUnsupportedFormat means no decoder exists for a clip's container
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrDecodeFailure means a clip was recognised but could not be decoded
	ErrDecodeFailure = errors.New("audio decode failed")

	// ErrStorageUnavailable means the clip store failed
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrNoClip means the requested clip has not been recorded or uploaded
	ErrNoClip = errors.New("no clip")

	// ErrRecording means the operation is blocked by a recording, or
	// recording itself failed
	ErrRecording = errors.New("recording in progress")

	// ErrClosed is returned once the event loop has stopped
	ErrClosed = errors.New("controller closed")
)

// decodeError maps decoder failures onto the taxonomy
func decodeError(err error) error {
	if errors.Is(err, decode.ErrUnsupportedFormat) {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return fmt.Errorf("%w: %v", ErrDecodeFailure, err)
}

// captureError maps recorder start failures onto the taxonomy and the
// transport status shown for them
func captureError(err error) (string, error) {
	if errors.Is(err, capture.ErrUnsupported) {
		return statusRecordingUnsupported, fmt.Errorf("%w: %v", ErrRecording, err)
	}
	return statusMicDenied, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
}
