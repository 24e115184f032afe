// ABOUTME: Malgo-based microphone capture
// ABOUTME: Records mono 16-bit PCM through miniaudio and hands back WAV bytes
package capture

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/harperreed/flipit/pkg/audio"
)

// Malgo records from the default capture device
type Malgo struct {
	sampleRate  int
	maxDuration time.Duration

	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	active   bool
}

// NewMalgo creates a recorder. The backend is opened on first use.
func NewMalgo(sampleRate int, maxDuration time.Duration) *Malgo {
	return &Malgo{
		sampleRate:  sampleRate,
		maxDuration: maxDuration,
	}
}

// Start opens the capture device and begins recording
func (m *Malgo) Start(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return nil, ErrBusy
	}

	if m.malgoCtx == nil {
		mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to initialize malgo context: %v", ErrUnsupported, err)
		}
		m.malgoCtx = mctx
	}

	ceiling := m.maxDuration
	if ceiling <= 0 {
		ceiling = DefaultMaxDuration
	}

	// Mono S16: two bytes per frame, capped at the ceiling
	limit := int(ceiling.Seconds()*float64(m.sampleRate)) * 2
	var (
		pcmMu sync.Mutex
		pcm   = make([]byte, 0, m.sampleRate*2)
	)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(m.sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		pcmMu.Lock()
		defer pcmMu.Unlock()
		room := limit - len(pcm)
		if room <= 0 {
			return
		}
		if len(pInputSamples) > room {
			pInputSamples = pInputSamples[:room]
		}
		pcm = append(pcm, pInputSamples...)
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize capture device: %v", ErrPermissionDenied, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("%w: failed to start capture device: %v", ErrPermissionDenied, err)
	}

	m.active = true
	log.Printf("Recording started: %dHz mono (malgo/S16)", m.sampleRate)

	finish := func() (*audio.Buffer, error) {
		if err := device.Stop(); err != nil {
			log.Printf("Warning: capture device stop error: %v", err)
		}
		device.Uninit()

		m.mu.Lock()
		m.active = false
		m.mu.Unlock()

		pcmMu.Lock()
		defer pcmMu.Unlock()

		buf := pcmToBuffer(pcm, m.sampleRate)
		log.Printf("Recording stopped: %.2fs captured", buf.Duration())
		return buf, nil
	}

	return newSession(ctx, ceiling, finish), nil
}

// Close releases the backend
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// pcmToBuffer converts little-endian mono S16 bytes
func pcmToBuffer(pcm []byte, sampleRate int) *audio.Buffer {
	frames := len(pcm) / 2
	buf := audio.NewBuffer(1, frames, sampleRate)
	for i := 0; i < frames; i++ {
		sample := int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
		buf.Data[0][i] = audio.SampleFromInt16(sample)
	}
	return buf
}
