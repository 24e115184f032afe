// ABOUTME: Audio encoder package for exporting clips
// ABOUTME: Provides WAV encoding and download file naming
// Package encode writes buffers back out for download.
//
// WAV output is 16-bit PCM; negative samples scale by 0x8000 and positive
// samples by 0x7fff.
//
// Example:
//
//	data, err := encode.WAV(audio.Reverse(buf))
//	name := encode.Filename("original", "audio/wav", time.Now())
package encode
