// ABOUTME: WAV decoder backed by go-audio/wav
// ABOUTME: Decodes 8/16/24/32-bit integer PCM RIFF files
package decode

import (
	"bytes"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/harperreed/flipit/pkg/audio"
)

// DecodeWAV decodes a complete RIFF/WAVE file
func DecodeWAV(data []byte) (*audio.Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid wav header", ErrCorrupt)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: wav: %v", ErrCorrupt, err)
	}

	return fromIntBuffer(pcm, int(dec.BitDepth))
}

// fromIntBuffer normalises a go-audio integer buffer to float samples.
// 8-bit WAV data is unsigned and is recentred first.
func fromIntBuffer(pcm *goaudio.IntBuffer, bitDepth int) (*audio.Buffer, error) {
	if pcm == nil || pcm.Format == nil {
		return nil, fmt.Errorf("%w: missing pcm format", ErrCorrupt)
	}

	scale := intScale(bitDepth)
	samples := make([]float32, len(pcm.Data))
	for i, v := range pcm.Data {
		if bitDepth == 8 {
			v -= 128
		}
		samples[i] = float32(v) / scale
	}

	return fromInterleaved(samples, pcm.Format.NumChannels, pcm.Format.SampleRate)
}
