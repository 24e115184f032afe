// ABOUTME: Audio decoder package for multiple container support
// ABOUTME: Sniffs clip bytes and decodes WAV, AIFF, FLAC, Opus, Vorbis and MP3
// Package decode turns complete encoded clips into planar float buffers.
//
// Supported containers are detected from their magic bytes:
//   - RIFF/WAVE (go-audio/wav)
//   - AIFF/AIFC (go-audio/aiff)
//   - FLAC (mewkiz/flac)
//   - Ogg Opus (hraban/opus) and Ogg Vorbis (jfreymuth/oggvorbis)
//   - MP3 (hajimehoshi/go-mp3)
//
// WebM is recognised but rejected with ErrUnsupportedFormat.
//
// Example:
//
//	buf, mime, err := decode.Decode(data)
//	if errors.Is(err, decode.ErrUnsupportedFormat) {
//	    // tell the user the upload failed
//	}
package decode
