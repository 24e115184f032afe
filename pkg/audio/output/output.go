// ABOUTME: Audio sink interface definition
// ABOUTME: Plays whole buffers from an offset and exposes the playback clock
package output

import "github.com/harperreed/flipit/pkg/audio"

// Sink plays buffers on an output device. Only one caller drives a sink;
// the transport engine decides which handles stay alive.
type Sink interface {
	// Start plays buf from offset seconds. onEnded fires once when playback
	// reaches the end of the buffer, never after Stop.
	Start(buf *audio.Buffer, offset float64, onEnded func()) (Handle, error)

	// Now returns the sink clock in seconds
	Now() float64

	// Close releases output resources
	Close() error
}

// Handle controls one live playback
type Handle interface {
	// Stop halts playback; it is safe to call more than once
	Stop()
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}

// clampVolume keeps volume in 0-100
func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}
