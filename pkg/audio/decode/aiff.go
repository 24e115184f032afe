// ABOUTME: AIFF decoder backed by go-audio/aiff
// ABOUTME: Decodes big-endian integer PCM AIFF/AIFC files
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/harperreed/flipit/pkg/audio"
)

const aiffChunkSamples = 4096

// DecodeAIFF decodes a complete AIFF file
func DecodeAIFF(data []byte) (*audio.Buffer, error) {
	dec := aiff.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid aiff header", ErrCorrupt)
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return nil, fmt.Errorf("%w: aiff has no format", ErrCorrupt)
	}

	scale := intScale(int(dec.BitDepth))
	chunk := &goaudio.IntBuffer{
		Data:   make([]int, aiffChunkSamples),
		Format: format,
	}

	var samples []float32
	for {
		n, err := dec.PCMBuffer(chunk)
		for _, v := range chunk.Data[:n] {
			samples = append(samples, float32(v)/scale)
		}
		if errors.Is(err, io.EOF) || n == 0 {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: aiff: %v", ErrCorrupt, err)
		}
	}

	return fromInterleaved(samples, format.NumChannels, format.SampleRate)
}
