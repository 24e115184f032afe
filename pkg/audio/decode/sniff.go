// ABOUTME: Container detection by magic bytes
// ABOUTME: Maps raw clip bytes to the mime labels stored alongside clips
package decode

import "bytes"

// Mime labels reported for sniffed containers
const (
	MimeWAV    = "audio/wav"
	MimeAIFF   = "audio/aiff"
	MimeFLAC   = "audio/flac"
	MimeOpus   = "audio/ogg;codecs=opus"
	MimeVorbis = "audio/ogg;codecs=vorbis"
	MimeOgg    = "audio/ogg"
	MimeMP3    = "audio/mpeg"
	MimeWebM   = "audio/webm"
)

// Ogg codec identification headers live in the first page
const oggProbeBytes = 512

// Sniff identifies the container of data. The bool reports whether a decoder
// exists for it; recognised but undecodable containers still return a label.
func Sniff(data []byte) (string, bool) {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return MimeWAV, true
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("FORM")) &&
		(bytes.Equal(data[8:12], []byte("AIFF")) || bytes.Equal(data[8:12], []byte("AIFC"))):
		return MimeAIFF, true
	case bytes.HasPrefix(data, []byte("fLaC")):
		return MimeFLAC, true
	case bytes.HasPrefix(data, []byte("OggS")):
		probe := data
		if len(probe) > oggProbeBytes {
			probe = probe[:oggProbeBytes]
		}
		if bytes.Contains(probe, []byte("OpusHead")) {
			return MimeOpus, true
		}
		if bytes.Contains(probe, []byte("\x01vorbis")) {
			return MimeVorbis, true
		}
		return MimeOgg, false
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return MimeWebM, false
	case bytes.HasPrefix(data, []byte("ID3")):
		return MimeMP3, true
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return MimeMP3, true
	}
	return "", false
}
