// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the planar Buffer type, reversal and waveform peaks
// Package audio provides the decoded audio buffer used throughout flipit.
//
// This package defines:
//   - Buffer: planar float32 PCM with a sample rate
//   - Reverse: a pure per-channel time reversal
//   - Peaks: fixed-size peak amplitudes for waveform drawing
//
// Example:
//
//	buf, _ := audio.Deinterleave(samples, 2, 48000)
//	rev := audio.Reverse(buf)
//	peaks := audio.Peaks(rev, audio.DefaultPeakCount)
package audio
