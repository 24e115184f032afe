// ABOUTME: Renderer package documentation
// ABOUTME: Describes the track waveform layers and their outputs
// Package render draws the per-track waveform comparison.
//
// A track picture is built from layers painted in order: a background grid
// of nine vertical lines, the centre line, the amplitude-difference overlay
// between original and mimic, then the original and mimic traces. Track A
// shows the original forward against the mimic flipped; track B shows the
// original flipped against the mimic forward.
//
// The same layers render to an RGBA image (for PNG export and the HTTP
// surface) or to styled terminal rows for the TUI. Rendering is a pure
// function of its inputs.
package render
