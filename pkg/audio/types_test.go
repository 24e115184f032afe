// ABOUTME: Tests for audio types
// ABOUTME: Tests buffer shape helpers and sample conversion functions
package audio

import "testing"

func TestSampleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"full positive", 1, 32767},
		{"full negative", -1, -32768},
		{"half positive", 0.5, 16383},
		{"half negative", -0.5, -16384},
		{"clipped positive", 1.5, 32767},
		{"clipped negative", -2, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected float32
	}{
		{"zero", 0, 0},
		{"min", -32768, -1},
		{"half", 16384, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestBufferShape(t *testing.T) {
	buf := NewBuffer(2, 48000, 48000)

	if buf.Channels() != 2 {
		t.Errorf("expected 2 channels, got %d", buf.Channels())
	}
	if buf.Frames() != 48000 {
		t.Errorf("expected 48000 frames, got %d", buf.Frames())
	}
	if buf.Duration() != 1.0 {
		t.Errorf("expected duration 1.0, got %f", buf.Duration())
	}
	if buf.Channel(2) != nil {
		t.Error("expected nil for out of range channel")
	}
}

func TestNilBuffer(t *testing.T) {
	var buf *Buffer

	if buf.Channels() != 0 || buf.Frames() != 0 || buf.Duration() != 0 {
		t.Error("nil buffer should report zero shape")
	}
	if buf.Channel(0) != nil {
		t.Error("nil buffer should have no channels")
	}
}

func TestDurationWithoutRate(t *testing.T) {
	buf := NewBuffer(1, 100, 0)
	if buf.Duration() != 0 {
		t.Errorf("expected 0 duration for zero rate, got %f", buf.Duration())
	}
}

func TestInterleaveRoundTrip(t *testing.T) {
	samples := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}

	buf, err := Deinterleave(samples, 2, 44100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Frames() != 3 {
		t.Fatalf("expected 3 frames, got %d", buf.Frames())
	}
	if buf.Data[1][2] != -0.3 {
		t.Errorf("expected -0.3, got %f", buf.Data[1][2])
	}

	out := buf.Interleave()
	for i := range samples {
		if out[i] != samples[i] {
			t.Errorf("sample %d: expected %f, got %f", i, samples[i], out[i])
		}
	}
}

func TestDeinterleaveErrors(t *testing.T) {
	if _, err := Deinterleave([]float32{1, 2, 3}, 2, 48000); err != ErrChannelMismatch {
		t.Errorf("expected ErrChannelMismatch, got %v", err)
	}
	if _, err := Deinterleave([]float32{1}, 0, 48000); err != ErrChannelMismatch {
		t.Errorf("expected ErrChannelMismatch for zero channels, got %v", err)
	}
}
