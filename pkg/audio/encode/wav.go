// ABOUTME: WAV encoder backed by go-audio/wav
// ABOUTME: Encodes planar float buffers as 16-bit PCM RIFF files in memory
package encode

import (
	"errors"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/harperreed/flipit/pkg/audio"
)

const (
	wavBitDepth  = 16
	wavFormatPCM = 1
)

// ErrEmptyBuffer is returned when there is nothing to encode
var ErrEmptyBuffer = errors.New("buffer has no channels or sample rate")

// WAV encodes buf as a 16-bit PCM WAV file
func WAV(buf *audio.Buffer) ([]byte, error) {
	if buf.Channels() == 0 || buf.SampleRate <= 0 {
		return nil, ErrEmptyBuffer
	}

	interleaved := buf.Interleave()
	pcm := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: buf.Channels(),
			SampleRate:  buf.SampleRate,
		},
		Data:           make([]int, len(interleaved)),
		SourceBitDepth: wavBitDepth,
	}
	for i, s := range interleaved {
		pcm.Data[i] = int(audio.SampleToInt16(s))
	}

	out := &memFile{}
	enc := wav.NewEncoder(out, buf.SampleRate, wavBitDepth, buf.Channels(), wavFormatPCM)
	if err := enc.Write(pcm); err != nil {
		return nil, fmt.Errorf("failed to write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize wav header: %w", err)
	}

	return out.Bytes(), nil
}
