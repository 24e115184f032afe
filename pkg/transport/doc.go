// ABOUTME: Transport package documentation
// ABOUTME: Describes the two comparison tracks and the preview player
// Package transport drives playback for the two comparison tracks.
//
// Track A plays the original forward or the mimic reversed; track B plays
// the original reversed or the mimic forward. Each track remembers its own
// offset across pauses and source switches. Starting any playback stops all
// other playback, so only one sound runs at a time.
//
// Example:
//
//	eng, _ := transport.NewEngine(transport.Config{
//		Sink:     sink,
//		Library:  lib,
//		Dispatch: loop.Do,
//		OnStatus: func(s string) { fmt.Println(s) },
//	})
//	eng.Play(transport.TrackA)
package transport
