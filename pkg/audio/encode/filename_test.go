// ABOUTME: Tests for download naming
// ABOUTME: Verifies mime to extension mapping and filename format
package encode

import (
	"testing"
	"time"
)

func TestExtensionForMime(t *testing.T) {
	tests := []struct {
		mime     string
		expected string
	}{
		{"", "webm"},
		{"audio/ogg", "ogg"},
		{"audio/ogg;codecs=opus", "ogg"},
		{"audio/webm;codecs=opus", "webm"},
		{"audio/wav", "wav"},
		{"audio/x-wav", "wav"},
		{"audio/mpeg", "audio"},
		{"audio/flac", "audio"},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			result := ExtensionForMime(tt.mime)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	ts := time.UnixMilli(1700000000123)

	if got := Filename("original", "audio/wav", ts); got != "original-1700000000123.wav" {
		t.Errorf("unexpected filename %s", got)
	}
	if got := Filename("mimic", "", ts); got != "mimic-1700000000123.webm" {
		t.Errorf("unexpected filename %s", got)
	}
}
