// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used to convert decoded clips to the output device rate
package resample

import (
	"math"

	"github.com/harperreed/flipit/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		position:   0.0,
	}
}

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate
func (r *Resampler) Resample(input []float32, output []float32) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0

	for outIdx < outputFrames {
		inputPos := r.position
		inputIdx := int(inputPos)

		// If we've consumed all input, stop
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := float32(inputPos - float64(inputIdx))

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			sample2 := input[(inputIdx+1)*r.channels+ch]
			output[outIdx*r.channels+ch] = sample1*(1-frac) + sample2*frac
		}

		outIdx++
		r.position += r.ratio
	}

	// Reset position for next chunk, keeping fractional part
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(math.Ceil(float64(inputFrames) / r.ratio))
	return outputFrames * r.channels
}

// Buffer converts a whole clip to rate. The source is returned unchanged when
// the rates already match or either rate is unusable.
func Buffer(buf *audio.Buffer, rate int) *audio.Buffer {
	if buf == nil || rate <= 0 || buf.SampleRate <= 0 || buf.SampleRate == rate {
		return buf
	}

	channels := buf.Channels()
	frames := buf.Frames()
	if channels == 0 || frames == 0 {
		return audio.NewBuffer(channels, 0, rate)
	}

	// Repeat the last frame so interpolation reaches the end of the clip
	input := make([]float32, 0, (frames+1)*channels)
	input = append(input, buf.Interleave()...)
	for c := 0; c < channels; c++ {
		input = append(input, buf.Data[c][frames-1])
	}

	r := New(buf.SampleRate, rate, channels)
	output := make([]float32, r.OutputSamplesNeeded(frames*channels)+channels)
	n := r.Resample(input, output)

	out, err := audio.Deinterleave(output[:n], channels, rate)
	if err != nil {
		return audio.NewBuffer(channels, 0, rate)
	}
	return out
}
