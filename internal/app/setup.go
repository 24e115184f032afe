// ABOUTME: Production wiring for the controller
// ABOUTME: Opens the output device, microphone, database and clip fetcher
package app

import (
	"fmt"
	"log"

	"github.com/harperreed/flipit/internal/capture"
	"github.com/harperreed/flipit/internal/config"
	"github.com/harperreed/flipit/internal/remote"
	"github.com/harperreed/flipit/internal/store"
	"github.com/harperreed/flipit/pkg/audio/output"
)

// Options selects optional collaborators
type Options struct {
	// NoRecorder leaves recording unsupported
	NoRecorder bool
}

// Runtime is a controller with the resources it owns
type Runtime struct {
	Controller *Controller
	Fetcher    *remote.Fetcher

	closers []func() error
}

// Close releases every resource in reverse order of opening
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
	r.closers = nil
}

// Setup builds a controller on real devices. A database that cannot be
// opened leaves the game running with storage reported unavailable.
func Setup(cfg config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{}

	sink, err := output.NewOto(cfg.SampleRate, cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}
	rt.closers = append(rt.closers, sink.Close)

	var recorder capture.Recorder
	if !opts.NoRecorder {
		mic := capture.NewMalgo(cfg.SampleRate, cfg.MaxDuration())
		rt.closers = append(rt.closers, mic.Close)
		recorder = mic
	}

	var st Store
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Printf("Clip storage unavailable: %v", err)
		st = &store.Memory{Err: err}
	} else {
		rt.closers = append(rt.closers, db.Close)
		st = db
	}

	fetcher, err := remote.NewFetcher(cfg.CacheDir)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create clip fetcher: %w", err)
	}
	rt.Fetcher = fetcher

	ctrl, err := New(Config{
		Sink:            sink,
		Recorder:        recorder,
		Store:           st,
		Fetcher:         fetcher,
		WaveformSamples: cfg.WaveformSamples,
		MaxSeconds:      cfg.MaxSeconds,
		TickInterval:    cfg.TickInterval,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Controller = ctrl

	return rt, nil
}
