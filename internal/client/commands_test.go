// ABOUTME: Tests for remote shell command parsing
// ABOUTME: Covers every verb and the usage errors
package client

import (
	"reflect"
	"testing"

	"github.com/harperreed/flipit/internal/protocol"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line     string
		expected protocol.ClientCommand
	}{
		{"play a", protocol.ClientCommand{Command: protocol.CommandPlay, Track: "A"}},
		{"PAUSE B", protocol.ClientCommand{Command: protocol.CommandPause, Track: "B"}},
		{"toggle A", protocol.ClientCommand{Command: protocol.CommandToggle, Track: "A"}},
		{"stop b", protocol.ClientCommand{Command: protocol.CommandStop, Track: "B"}},
		{"cycle A", protocol.ClientCommand{Command: protocol.CommandCycle, Track: "A"}},
		{"seek A 3.5", protocol.ClientCommand{Command: protocol.CommandSeek, Track: "A", Value: 3.5}},
		{"seekby B -5", protocol.ClientCommand{Command: protocol.CommandSeekBy, Track: "B", Value: -5.0}},
		{"source B mimic", protocol.ClientCommand{Command: protocol.CommandSource, Track: "B", Value: "mimic"}},
		{"preview originalReverse", protocol.ClientCommand{Command: protocol.CommandPreview, Value: "originalReverse"}},
		{"record Mimic", protocol.ClientCommand{Command: protocol.CommandRecord, Value: "mimic"}},
		{"stopall", protocol.ClientCommand{Command: protocol.CommandStopAll}},
		{"stoprecord", protocol.ClientCommand{Command: protocol.CommandStopRecord}},
		{"clear", protocol.ClientCommand{Command: protocol.CommandClear}},
		{
			"fetch original https://example.com/a.wav",
			protocol.ClientCommand{
				Command: protocol.CommandFetch,
				Value:   protocol.FetchValue{Kind: "original", URL: "https://example.com/a.wav"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"dance",
		"play",
		"play A B",
		"seek A",
		"seek A soon",
		"source A",
		"fetch original",
		"clear now",
	} {
		t.Run(line, func(t *testing.T) {
			if _, err := ParseLine(line); err == nil {
				t.Errorf("expected error for %q", line)
			}
		})
	}
}
