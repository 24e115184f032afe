// ABOUTME: Waveform peak sampler for visualization
// ABOUTME: Downsamples the first channel into a fixed number of peak amplitudes
package audio

// DefaultPeakCount is the number of peaks drawn per clip
const DefaultPeakCount = 360

// Peaks partitions the first channel into n blocks of max(1, floor(len/n))
// frames and returns the max absolute amplitude per block. The result always
// has exactly n entries; blocks starting past the data are 0.
func Peaks(buf *Buffer, n int) []float32 {
	if n <= 0 {
		return nil
	}

	peaks := make([]float32, n)
	data := buf.Channel(0)
	if len(data) == 0 {
		return peaks
	}

	blockSize := len(data) / n
	if blockSize < 1 {
		blockSize = 1
	}

	for i := 0; i < n; i++ {
		start := i * blockSize
		if start >= len(data) {
			break
		}
		end := start + blockSize
		if end > len(data) {
			end = len(data)
		}

		var peak float32
		for _, v := range data[start:end] {
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
		if peak > 1 {
			peak = 1
		}
		peaks[i] = peak
	}

	return peaks
}
