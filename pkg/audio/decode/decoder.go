// ABOUTME: Decoder interface and container dispatch
// ABOUTME: Sniffs raw clip bytes and routes them to the matching codec
package decode

import (
	"fmt"

	"github.com/harperreed/flipit/pkg/audio"
)

// Decoder converts a complete encoded clip into a planar buffer
type Decoder interface {
	Decode(data []byte) (*audio.Buffer, error)
}

// DecoderFunc adapts a function to the Decoder interface
type DecoderFunc func(data []byte) (*audio.Buffer, error)

// Decode calls f(data)
func (f DecoderFunc) Decode(data []byte) (*audio.Buffer, error) {
	return f(data)
}

var decoders = map[string]Decoder{
	MimeWAV:    DecoderFunc(DecodeWAV),
	MimeAIFF:   DecoderFunc(DecodeAIFF),
	MimeFLAC:   DecoderFunc(DecodeFLAC),
	MimeOpus:   DecoderFunc(DecodeOpus),
	MimeVorbis: DecoderFunc(DecodeVorbis),
	MimeMP3:    DecoderFunc(DecodeMP3),
}

// ForMime returns the decoder registered for a sniffed mime label
func ForMime(mime string) (Decoder, error) {
	d, ok := decoders[mime]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}
	return d, nil
}

// Decode sniffs the container and decodes it. The detected mime label is
// returned even when decoding fails so callers can report it.
func Decode(data []byte) (*audio.Buffer, string, error) {
	mime, ok := Sniff(data)
	if !ok {
		if mime == "" {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, mime, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}

	d, err := ForMime(mime)
	if err != nil {
		return nil, mime, err
	}

	buf, err := d.Decode(data)
	if err != nil {
		return nil, mime, err
	}
	if buf.Frames() == 0 || buf.SampleRate <= 0 {
		return nil, mime, fmt.Errorf("%w: no audio frames", ErrCorrupt)
	}
	return buf, mime, nil
}

// fromInterleaved builds a buffer from interleaved float samples, dropping a trailing partial frame
func fromInterleaved(samples []float32, channels, sampleRate int) (*audio.Buffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: invalid channel count %d", ErrCorrupt, channels)
	}
	whole := len(samples) - len(samples)%channels
	buf, err := audio.Deinterleave(samples[:whole], channels, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return buf, nil
}

// intScale returns the divisor that maps signed integer PCM of bitDepth onto [-1, 1]
func intScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 16:
		return 32768.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}
