// ABOUTME: Decoded clip with its derived buffers
// ABOUTME: Replaced wholesale on every recording or upload, never mutated
package app

import (
	"github.com/harperreed/flipit/pkg/audio"
	"github.com/harperreed/flipit/pkg/audio/decode"
)

type clip struct {
	data     []byte
	mime     string
	buffer   *audio.Buffer
	reversed *audio.Buffer
	peaks    []float32
}

// newClip decodes data and derives the reversal and waveform. An empty
// mime takes the sniffed container label.
func newClip(data []byte, mime string, peakCount int) (*clip, error) {
	buf, sniffed, err := decode.Decode(data)
	if err != nil {
		return nil, decodeError(err)
	}
	if mime == "" {
		mime = sniffed
	}

	return &clip{
		data:     data,
		mime:     mime,
		buffer:   buf,
		reversed: audio.Reverse(buf),
		peaks:    audio.Peaks(buf, peakCount),
	}, nil
}

// format is the label shown in the panel
func (c *clip) format() string {
	if c.mime == "" {
		return "audio"
	}
	return c.mime
}
