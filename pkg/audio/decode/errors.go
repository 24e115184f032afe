// ABOUTME: Sentinel errors for clip decoding
// ABOUTME: Lets callers tell unknown containers from broken ones
package decode

import "errors"

var (
	// ErrUnsupportedFormat means the container or codec has no decoder
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrCorrupt means the container was recognised but could not be decoded
	ErrCorrupt = errors.New("corrupt audio data")
)
