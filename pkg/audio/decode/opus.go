// ABOUTME: Ogg Opus decoder backed by libopusfile
// ABOUTME: Decodes recorder-style audio/ogg;codecs=opus clips at 48kHz
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/harperreed/flipit/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz regardless of the input rate in the header
const opusSampleRate = 48000

// Max frame size per channel (120ms at 48kHz)
const opusMaxFrame = 5760

// DecodeOpus decodes a complete Ogg Opus stream
func DecodeOpus(data []byte) (*audio.Buffer, error) {
	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: opus: %v", ErrCorrupt, err)
	}
	defer stream.Close()

	pcm16 := make([]int16, opusMaxFrame*channels)
	var samples []float32
	for {
		n, err := stream.Read(pcm16)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: opus read: %v", ErrCorrupt, err)
		}
		// n is samples per channel
		for _, s := range pcm16[:n*channels] {
			samples = append(samples, audio.SampleFromInt16(s))
		}
	}

	return fromInterleaved(samples, channels, opusSampleRate)
}

// opusChannels reads the output channel count from the OpusHead packet
func opusChannels(data []byte) (int, error) {
	probe := data
	if len(probe) > oggProbeBytes {
		probe = probe[:oggProbeBytes]
	}
	idx := bytes.Index(probe, []byte("OpusHead"))
	if idx < 0 || idx+9 >= len(data) {
		return 0, fmt.Errorf("%w: missing OpusHead", ErrCorrupt)
	}
	channels := int(data[idx+9])
	if channels < 1 || channels > 2 {
		return 0, fmt.Errorf("%w: unsupported opus channel count %d", ErrCorrupt, channels)
	}
	return channels, nil
}
