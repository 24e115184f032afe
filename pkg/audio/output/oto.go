// ABOUTME: Oto-based audio sink implementation
// ABOUTME: Plays buffers through one shared oto context with software volume
package output

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/harperreed/flipit/pkg/audio"
	"github.com/harperreed/flipit/pkg/audio/resample"
)

const (
	// How often a live player is checked for natural completion
	endPollInterval = 10 * time.Millisecond

	// Converted clips kept around; a session has at most four buffers
	maxPrepared = 8
)

// Oto sink using the oto library. oto allows only one context per process,
// so every buffer is converted to the device format before playback.
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	sampleRate int
	channels   int
	volume     int
	muted      bool
	start      time.Time
	live       map[*otoHandle]struct{}
	prepared   map[*audio.Buffer][]byte
	closed     bool
}

// otoHandle is one playing buffer
type otoHandle struct {
	sink    *Oto
	player  *oto.Player
	done    chan struct{}
	stopped bool
	once    sync.Once
}

// NewOto opens the output device
func NewOto(sampleRate, channels int) (*Oto, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)

	return &Oto{
		otoCtx:     ctx,
		sampleRate: sampleRate,
		channels:   channels,
		volume:     100,
		start:      time.Now(),
		live:       make(map[*otoHandle]struct{}),
		prepared:   make(map[*audio.Buffer][]byte),
	}, nil
}

// Now returns seconds since the device was opened
func (o *Oto) Now() float64 {
	return time.Since(o.start).Seconds()
}

// Start plays buf from offset seconds
func (o *Oto) Start(buf *audio.Buffer, offset float64, onEnded func()) (Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, fmt.Errorf("output closed")
	}
	if buf.Channels() == 0 {
		return nil, fmt.Errorf("buffer has no channels")
	}

	pcm := o.prepare(buf)

	from := offsetByte(offset, o.sampleRate, o.channels, len(pcm))
	player := o.otoCtx.NewPlayer(bytes.NewReader(pcm[from:]))
	player.SetVolume(getVolumeMultiplier(o.volume, o.muted))
	player.Play()

	h := &otoHandle{
		sink:   o,
		player: player,
		done:   make(chan struct{}),
	}
	o.live[h] = struct{}{}

	go h.watch(onEnded)

	return h, nil
}

// prepare converts buf to device PCM, reusing earlier conversions (must hold o.mu)
func (o *Oto) prepare(buf *audio.Buffer) []byte {
	if pcm, ok := o.prepared[buf]; ok {
		return pcm
	}
	if len(o.prepared) >= maxPrepared {
		o.prepared = make(map[*audio.Buffer][]byte)
	}
	pcm := encodeDevicePCM(resample.Buffer(buf, o.sampleRate), o.channels)
	o.prepared[buf] = pcm
	return pcm
}

// watch waits for the player to drain and reports completion
func (h *otoHandle) watch(onEnded func()) {
	ticker := time.NewTicker(endPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			if h.player.IsPlaying() {
				continue
			}

			h.sink.mu.Lock()
			stopped := h.stopped
			h.stopped = true
			delete(h.sink.live, h)
			h.sink.mu.Unlock()

			h.release()
			if !stopped && onEnded != nil {
				onEnded()
			}
			return
		}
	}
}

// Stop halts playback without reporting completion
func (h *otoHandle) Stop() {
	h.sink.mu.Lock()
	h.stopped = true
	delete(h.sink.live, h)
	h.sink.mu.Unlock()

	h.release()
}

// release closes the player exactly once
func (h *otoHandle) release() {
	h.once.Do(func() {
		close(h.done)
		h.player.Pause()
		if err := h.player.Close(); err != nil {
			log.Printf("Error closing player: %v", err)
		}
	})
}

// Close stops every live player and suspends the device
func (o *Oto) Close() error {
	o.mu.Lock()
	handles := make([]*otoHandle, 0, len(o.live))
	for h := range o.live {
		handles = append(handles, h)
	}
	o.closed = true
	o.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}

	return o.otoCtx.Suspend()
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	o.mu.Lock()
	o.volume = clampVolume(volume)
	o.applyVolume()
	o.mu.Unlock()
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.mu.Lock()
	o.muted = muted
	o.applyVolume()
	o.mu.Unlock()
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (o *Oto) GetVolume() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// applyVolume pushes the current level to live players (must hold o.mu)
func (o *Oto) applyVolume() {
	multiplier := getVolumeMultiplier(o.volume, o.muted)
	for h := range o.live {
		h.player.SetVolume(multiplier)
	}
}
