// ABOUTME: MP3 decoder backed by hajimehoshi/go-mp3
// ABOUTME: Decodes MPEG audio to stereo float samples
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/harperreed/flipit/pkg/audio"
)

// go-mp3 always produces 16-bit little-endian stereo
const mp3Channels = 2

// DecodeMP3 decodes a complete MP3 file
func DecodeMP3(data []byte) (*audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %v", ErrCorrupt, err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3 read: %v", ErrCorrupt, err)
	}

	numSamples := len(raw) / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}

	return fromInterleaved(samples, mp3Channels, decoder.SampleRate())
}
