// ABOUTME: Time reversal of decoded buffers
// ABOUTME: Produces a reversed copy with identical shape, never touching the source
package audio

// Reverse returns a new buffer whose samples run backwards on every channel.
// A nil or empty source yields an empty buffer. Each channel is reversed
// over its own length.
func Reverse(src *Buffer) *Buffer {
	if src == nil {
		return &Buffer{}
	}

	out := &Buffer{SampleRate: src.SampleRate, Data: make([][]float32, len(src.Data))}
	for c, ch := range src.Data {
		n := len(ch)
		dst := make([]float32, n)
		for i := range dst {
			dst[i] = ch[n-1-i]
		}
		out.Data[c] = dst
	}
	return out
}
