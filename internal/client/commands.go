// ABOUTME: Text command parsing for the remote shell
// ABOUTME: Turns lines like "seek A 3.5" into wire commands
package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/flipit/internal/protocol"
)

// Verbs lists the shell commands in help order
var Verbs = []string{
	"play", "pause", "toggle", "stop", "seek", "seekby", "source", "cycle",
	"preview", "stopall", "record", "stoprecord", "clear", "fetch",
}

// ParseLine parses one shell line
func ParseLine(line string) (protocol.ClientCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return protocol.ClientCommand{}, fmt.Errorf("empty command")
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	need := func(n int, usage string) error {
		if len(args) != n {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}

	switch verb {
	case "play", "pause", "toggle", "stop", "cycle":
		if err := need(1, verb+" <A|B>"); err != nil {
			return protocol.ClientCommand{}, err
		}
		return protocol.ClientCommand{Command: trackVerbs[verb], Track: strings.ToUpper(args[0])}, nil

	case "seek", "seekby":
		if err := need(2, verb+" <A|B> <seconds>"); err != nil {
			return protocol.ClientCommand{}, err
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return protocol.ClientCommand{}, fmt.Errorf("invalid seconds %q", args[1])
		}
		return protocol.ClientCommand{Command: trackVerbs[verb], Track: strings.ToUpper(args[0]), Value: v}, nil

	case "source":
		if err := need(2, "source <A|B> <selection>"); err != nil {
			return protocol.ClientCommand{}, err
		}
		return protocol.ClientCommand{Command: protocol.CommandSource, Track: strings.ToUpper(args[0]), Value: args[1]}, nil

	case "preview":
		if err := need(1, "preview <selection>"); err != nil {
			return protocol.ClientCommand{}, err
		}
		return protocol.ClientCommand{Command: protocol.CommandPreview, Value: args[0]}, nil

	case "record":
		if err := need(1, "record <original|mimic>"); err != nil {
			return protocol.ClientCommand{}, err
		}
		return protocol.ClientCommand{Command: protocol.CommandRecord, Value: strings.ToLower(args[0])}, nil

	case "fetch":
		if err := need(2, "fetch <original|mimic> <url>"); err != nil {
			return protocol.ClientCommand{}, err
		}
		return protocol.ClientCommand{
			Command: protocol.CommandFetch,
			Value:   protocol.FetchValue{Kind: strings.ToLower(args[0]), URL: args[1]},
		}, nil

	case "stopall", "stoprecord", "clear":
		if err := need(0, verb); err != nil {
			return protocol.ClientCommand{}, err
		}
		return protocol.ClientCommand{Command: simpleVerbs[verb]}, nil
	}

	return protocol.ClientCommand{}, fmt.Errorf("unknown command %q", verb)
}

var trackVerbs = map[string]string{
	"play":   protocol.CommandPlay,
	"pause":  protocol.CommandPause,
	"toggle": protocol.CommandToggle,
	"stop":   protocol.CommandStop,
	"cycle":  protocol.CommandCycle,
	"seek":   protocol.CommandSeek,
	"seekby": protocol.CommandSeekBy,
}

var simpleVerbs = map[string]string{
	"stopall":    protocol.CommandStopAll,
	"stoprecord": protocol.CommandStopRecord,
	"clear":      protocol.CommandClear,
}
