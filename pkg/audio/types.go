// ABOUTME: Audio type definitions
// ABOUTME: Defines decoded planar buffers and sample conversions
package audio

import "errors"

// ErrChannelMismatch is returned when interleaved data does not divide into whole frames
var ErrChannelMismatch = errors.New("sample count is not a multiple of channel count")

// Buffer represents decoded PCM audio as planar float32 samples in [-1, 1].
// Every channel holds the same number of frames; Frames reports channel 0.
// A Buffer is never mutated in place once handed to the player; new clips
// replace it wholesale.
type Buffer struct {
	SampleRate int
	Data       [][]float32 // Data[channel][frame]
}

// NewBuffer allocates a silent buffer
func NewBuffer(channels, frames, sampleRate int) *Buffer {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
	}
	return &Buffer{SampleRate: sampleRate, Data: data}
}

// Channels returns the channel count
func (b *Buffer) Channels() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Frames returns the number of frames (samples per channel)
func (b *Buffer) Frames() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the length in seconds
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Channel returns the samples of channel c, or nil when out of range
func (b *Buffer) Channel(c int) []float32 {
	if b == nil || c < 0 || c >= len(b.Data) {
		return nil
	}
	return b.Data[c]
}

// Interleave returns frame-ordered samples (L R L R ...)
func (b *Buffer) Interleave() []float32 {
	channels := b.Channels()
	frames := b.Frames()
	out := make([]float32, channels*frames)
	for c := 0; c < channels; c++ {
		ch := b.Data[c]
		for i := 0; i < frames; i++ {
			out[i*channels+c] = ch[i]
		}
	}
	return out
}

// Deinterleave splits frame-ordered samples into a planar buffer
func Deinterleave(samples []float32, channels, sampleRate int) (*Buffer, error) {
	if channels <= 0 {
		return nil, ErrChannelMismatch
	}
	if len(samples)%channels != 0 {
		return nil, ErrChannelMismatch
	}
	frames := len(samples) / channels
	buf := NewBuffer(channels, frames, sampleRate)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			buf.Data[c][i] = samples[i*channels+c]
		}
	}
	return buf, nil
}

// SampleToInt16 converts a float sample to 16-bit PCM, clamping to [-1, 1].
// Negative values scale by 0x8000 and positive values by 0x7fff.
func SampleToInt16(sample float32) int16 {
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	if sample < 0 {
		return int16(sample * 0x8000)
	}
	return int16(sample * 0x7fff)
}

// SampleFromInt16 converts a 16-bit PCM sample to float
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}
