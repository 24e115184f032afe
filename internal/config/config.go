// ABOUTME: Application configuration from environment variables
// ABOUTME: Defaults for recording, output device, storage and the HTTP surface
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings. Flags in main override these values.
type Config struct {
	DBPath          string
	CacheDir        string
	Port            int
	MaxSeconds      int
	SampleRate      int
	Channels        int
	WaveformSamples int
	TickInterval    time.Duration
}

// Defaults
const (
	DefaultDBPath          = "flipit.db"
	DefaultPort            = 8930
	DefaultMaxSeconds      = 120
	DefaultSampleRate      = 48000
	DefaultChannels        = 2
	DefaultWaveformSamples = 360
	DefaultTickInterval    = 16 * time.Millisecond
)

// Default returns the built-in configuration
func Default() Config {
	return Config{
		DBPath:          DefaultDBPath,
		CacheDir:        defaultCacheDir(),
		Port:            DefaultPort,
		MaxSeconds:      DefaultMaxSeconds,
		SampleRate:      DefaultSampleRate,
		Channels:        DefaultChannels,
		WaveformSamples: DefaultWaveformSamples,
		TickInterval:    DefaultTickInterval,
	}
}

// Load reads FLIPIT_* environment variables over the defaults
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup("FLIPIT_DB"); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := lookup("FLIPIT_CACHE_DIR"); ok && v != "" {
		cfg.CacheDir = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"FLIPIT_PORT", &cfg.Port},
		{"FLIPIT_MAX_SECONDS", &cfg.MaxSeconds},
		{"FLIPIT_SAMPLE_RATE", &cfg.SampleRate},
		{"FLIPIT_WAVEFORM_SAMPLES", &cfg.WaveformSamples},
	}
	for _, e := range ints {
		v, ok := lookup(e.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", e.name, v, err)
		}
		*e.dst = n
	}

	return cfg, cfg.Validate()
}

// Validate rejects values the audio path cannot work with
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxSeconds <= 0 {
		return fmt.Errorf("max seconds must be positive, got %d", c.MaxSeconds)
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("unsupported sample rate %d", c.SampleRate)
	}
	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("unsupported channel count %d", c.Channels)
	}
	if c.WaveformSamples <= 0 {
		return fmt.Errorf("waveform samples must be positive, got %d", c.WaveformSamples)
	}
	return nil
}

// MaxDuration is the recording ceiling
func (c Config) MaxDuration() time.Duration {
	return time.Duration(c.MaxSeconds) * time.Second
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".flipit-cache"
	}
	return dir + string(os.PathSeparator) + "flipit"
}
