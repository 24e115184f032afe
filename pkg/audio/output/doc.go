// ABOUTME: Audio output package for playing clips
// ABOUTME: Provides the Sink interface, an oto implementation and a fake
// Package output provides audio playback sinks.
//
// A Sink plays a whole buffer starting at an offset and reports natural
// completion through a callback. Oto drives the sound card; Fake records
// calls for tests and headless servers.
//
// Example:
//
//	sink, err := output.NewOto(48000, 2)
//	h, err := sink.Start(buf, 1.5, func() { log.Printf("done") })
//	h.Stop()
package output
