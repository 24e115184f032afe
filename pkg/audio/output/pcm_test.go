// ABOUTME: Tests for device PCM layout
// ABOUTME: Channel mapping and offset positioning
package output

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/harperreed/flipit/pkg/audio"
)

func samples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestEncodeDevicePCM(t *testing.T) {
	tests := []struct {
		name     string
		data     [][]float32
		channels int
		expected []int16
	}{
		{
			name:     "mono to stereo duplicates",
			data:     [][]float32{{1, -1}},
			channels: 2,
			expected: []int16{32767, 32767, -32768, -32768},
		},
		{
			name:     "stereo passes through interleaved",
			data:     [][]float32{{0.5, 0}, {-0.5, 1}},
			channels: 2,
			expected: []int16{16383, -16384, 0, 32767},
		},
		{
			name:     "extra channels dropped",
			data:     [][]float32{{0.5}, {-0.5}, {1}},
			channels: 2,
			expected: []int16{16383, -16384},
		},
		{
			name:     "stereo to mono keeps the first channel",
			data:     [][]float32{{0.5, -1}, {1, 1}},
			channels: 1,
			expected: []int16{16383, -32768},
		},
		{
			name:     "clipping",
			data:     [][]float32{{2, -2}},
			channels: 1,
			expected: []int16{32767, -32768},
		},
		{
			name:     "empty",
			data:     [][]float32{{}},
			channels: 2,
			expected: []int16{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &audio.Buffer{SampleRate: 48000, Data: tt.data}
			got := samples(encodeDevicePCM(buf, tt.channels))

			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d samples, got %d", len(tt.expected), len(got))
			}
			for i, v := range tt.expected {
				if got[i] != v {
					t.Errorf("sample %d: expected %d, got %d", i, v, got[i])
				}
			}
		})
	}
}

func TestOffsetByte(t *testing.T) {
	// 10 stereo frames at 10 Hz: one second, 40 bytes
	const size = 40

	tests := []struct {
		name     string
		offset   float64
		channels int
		size     int
		expected int
	}{
		{"start", 0, 2, size, 0},
		{"negative", -3, 2, size, 0},
		{"nan", math.NaN(), 2, size, 0},
		{"half way", 0.5, 2, size, 20},
		{"rounds down to a frame", 0.37, 2, size, 12},
		{"mono frames", 0.5, 1, 20, 10},
		{"at the end", 1, 2, size, size},
		{"past the end", 7, 2, size, size},
		{"infinite", math.Inf(1), 2, size, size},
		{"empty", 0.5, 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := offsetByte(tt.offset, 10, tt.channels, tt.size)
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
			if got%(tt.channels*2) != 0 {
				t.Errorf("offset %d is not on a frame boundary", got)
			}
		})
	}
}
