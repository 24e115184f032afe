// ABOUTME: Ogg Vorbis decoder backed by jfreymuth/oggvorbis
// ABOUTME: Decodes audio/ogg;codecs=vorbis clips to float samples
package decode

import (
	"bytes"
	"fmt"

	"github.com/harperreed/flipit/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

// DecodeVorbis decodes a complete Ogg Vorbis stream
func DecodeVorbis(data []byte) (*audio.Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: vorbis: %v", ErrCorrupt, err)
	}

	return fromInterleaved(samples, format.Channels, format.SampleRate)
}
