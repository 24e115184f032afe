// ABOUTME: Playback clock package
// ABOUTME: Seconds-based clocks shared by the transport engine and audio sinks
// Package clock provides the time source that playback offsets are measured against.
//
// Offsets are computed as clock.Now() - startTime, so every sink exposes a
// Clock and tests drive a Fake.
//
// Example:
//
//	c := clock.NewFake(0)
//	c.Advance(1.5)
//	clock.FormatTime(c.Now()) // "00:01"
package clock
