// ABOUTME: FLAC decoder backed by mewkiz/flac
// ABOUTME: Decodes every frame of a FLAC stream into a planar buffer
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/harperreed/flipit/pkg/audio"
	"github.com/mewkiz/flac"
)

// DecodeFLAC decodes a complete FLAC stream
func DecodeFLAC(data []byte) (*audio.Buffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: flac: %v", ErrCorrupt, err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	if channels == 0 {
		return nil, fmt.Errorf("%w: flac has no channels", ErrCorrupt)
	}
	scale := intScale(int(info.BitsPerSample))

	planes := make([][]float32, channels)
	if info.NSamples > 0 {
		for ch := range planes {
			planes[ch] = make([]float32, 0, info.NSamples)
		}
	}

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: flac frame: %v", ErrCorrupt, err)
		}

		for ch := 0; ch < channels && ch < len(frame.Subframes); ch++ {
			sub := frame.Subframes[ch].Samples
			for i := 0; i < int(frame.BlockSize) && i < len(sub); i++ {
				planes[ch] = append(planes[ch], float32(sub[i])/scale)
			}
		}
	}

	return &audio.Buffer{SampleRate: int(info.SampleRate), Data: planes}, nil
}
