// ABOUTME: Device PCM layout for the oto sink
// ABOUTME: Channel mapping to 16-bit frames and offset to byte position
package output

import (
	"encoding/binary"
	"math"

	"github.com/harperreed/flipit/pkg/audio"
)

// encodeDevicePCM interleaves buf as 16-bit little-endian frames with the
// device channel count. Mono is duplicated; extra channels are dropped.
func encodeDevicePCM(buf *audio.Buffer, channels int) []byte {
	frames := buf.Frames()
	out := make([]byte, frames*channels*2)

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			src := ch
			if src >= buf.Channels() {
				src = buf.Channels() - 1
			}
			sample := audio.SampleToInt16(buf.Data[src][i])
			binary.LittleEndian.PutUint16(out[(i*channels+ch)*2:], uint16(sample))
		}
	}

	return out
}

// offsetByte is where playback from offset seconds begins in device PCM of
// size bytes. It always lands on a frame boundary within [0, size].
func offsetByte(offset float64, sampleRate, channels, size int) int {
	if math.IsNaN(offset) || offset <= 0 {
		return 0
	}
	frameBytes := channels * 2
	frames := size / frameBytes
	startFrame := offset * float64(sampleRate)
	if startFrame >= float64(frames) {
		return frames * frameBytes
	}
	return int(startFrame) * frameBytes
}
