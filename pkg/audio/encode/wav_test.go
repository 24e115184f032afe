// ABOUTME: Tests for WAV encoding
// ABOUTME: Round-trips encoded clips through the decoder
package encode

import (
	"encoding/binary"
	"testing"

	"github.com/harperreed/flipit/pkg/audio"
	"github.com/harperreed/flipit/pkg/audio/decode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVHeader(t *testing.T) {
	buf := audio.NewBuffer(2, 100, 44100)

	data, err := WAV(buf)
	require.NoError(t, err)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, uint32(len(data)-8), binary.LittleEndian.Uint32(data[4:8]))
	// 44 byte header plus 100 frames * 2 channels * 2 bytes
	assert.Len(t, data, 44+400)
}

func TestWAVSampleScaling(t *testing.T) {
	buf := audio.NewBuffer(1, 3, 8000)
	copy(buf.Data[0], []float32{1, -1, 0})

	data, err := WAV(buf)
	require.NoError(t, err)

	pcm := data[44:]
	assert.Equal(t, int16(32767), int16(binary.LittleEndian.Uint16(pcm[0:])))
	assert.Equal(t, int16(-32768), int16(binary.LittleEndian.Uint16(pcm[2:])))
	assert.Equal(t, int16(0), int16(binary.LittleEndian.Uint16(pcm[4:])))
}

func TestWAVRoundTrip(t *testing.T) {
	src := audio.NewBuffer(2, 480, 48000)
	for i := 0; i < 480; i++ {
		src.Data[0][i] = 0.5
		src.Data[1][i] = -0.25
	}

	data, err := WAV(src)
	require.NoError(t, err)

	out, mime, err := decode.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, decode.MimeWAV, mime)
	assert.Equal(t, 48000, out.SampleRate)
	assert.Equal(t, 2, out.Channels())
	assert.Equal(t, 480, out.Frames())
	assert.InDelta(t, 0.5, out.Data[0][10], 0.001)
	assert.InDelta(t, -0.25, out.Data[1][10], 0.001)
}

func TestWAVEmpty(t *testing.T) {
	_, err := WAV(nil)
	assert.ErrorIs(t, err, ErrEmptyBuffer)

	_, err = WAV(&audio.Buffer{SampleRate: 48000})
	assert.ErrorIs(t, err, ErrEmptyBuffer)
}

func TestMemFileSeekAndOverwrite(t *testing.T) {
	m := &memFile{}
	_, _ = m.Write([]byte("hello world"))
	_, err := m.Seek(0, 0)
	require.NoError(t, err)
	_, _ = m.Write([]byte("J"))

	assert.Equal(t, "Jello world", string(m.Bytes()))

	_, err = m.Seek(-1, 0)
	assert.Error(t, err)
}
