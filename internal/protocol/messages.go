// ABOUTME: Flip It wire message definitions
// ABOUTME: Envelopes and payloads exchanged over the /ws state feed
package protocol

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is bumped on incompatible envelope changes
const ProtocolVersion = 1

// Message types
const (
	TypeServerHello   = "server/hello"
	TypeStateUpdate   = "state/update"
	TypeClientCommand = "client/command"
	TypeCommandResult = "command/result"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ServerHello is sent once when a client connects
type ServerHello struct {
	ServerID string `json:"server_id"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Product  string `json:"product"`
	Software string `json:"software_version"`
}

// Commands accepted in a client/command
const (
	CommandPlay       = "play"
	CommandPause      = "pause"
	CommandToggle     = "toggle"
	CommandStop       = "stop"
	CommandSeek       = "seek"
	CommandSeekBy     = "seekBy"
	CommandSource     = "source"
	CommandCycle      = "cycle"
	CommandPreview    = "preview"
	CommandStopAll    = "stopAll"
	CommandRecord     = "record"
	CommandStopRecord = "stopRecord"
	CommandClear      = "clear"
	CommandFetch      = "fetch"
)

// ClientCommand asks the server to perform an operation. Track names a
// track for transport commands; Value carries the seek target, selection,
// clip kind or URL depending on the command.
type ClientCommand struct {
	ID      string      `json:"id,omitempty"`
	Command string      `json:"command"`
	Track   string      `json:"track,omitempty"`
	Value   interface{} `json:"value,omitempty"`
}

// CommandResult acknowledges a ClientCommand
type CommandResult struct {
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// DecodePayload converts a generic payload into v
func DecodePayload(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// StringValue returns the command value as a string
func (c ClientCommand) StringValue() (string, error) {
	switch v := c.Value.(type) {
	case string:
		return v, nil
	case nil:
		return "", fmt.Errorf("%s: missing value", c.Command)
	}
	return "", fmt.Errorf("%s: value %v is not a string", c.Command, c.Value)
}

// FloatValue returns the command value as a number
func (c ClientCommand) FloatValue() (float64, error) {
	switch v := c.Value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case nil:
		return 0, fmt.Errorf("%s: missing value", c.Command)
	}
	return 0, fmt.Errorf("%s: value %v is not a number", c.Command, c.Value)
}

// FetchValue is the value of a fetch command
type FetchValue struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}
