// ABOUTME: Entry point for the Flip It, Reverse It game
// ABOUTME: Parses CLI flags, wires the controller and runs the TUI
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/config"
	"github.com/harperreed/flipit/internal/server"
	"github.com/harperreed/flipit/internal/ui"
	"github.com/harperreed/flipit/internal/version"
)

var (
	dbPath         = flag.String("db", "", "SQLite database path (default: $FLIPIT_DB or flipit.db)")
	logFile        = flag.String("log-file", "flipit.log", "Log file path")
	noTUI          = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	maxSeconds     = flag.Int("max-seconds", 0, "Recording ceiling in seconds (default: 120)")
	sampleRate     = flag.Int("sample-rate", 0, "Output and capture sample rate (default: 48000)")
	uploadOriginal = flag.String("upload-original", "", "Audio file to load as the original clip")
	uploadMimic    = flag.String("upload-mimic", "", "Audio file to load as the mimic clip")
	originalURL    = flag.String("original-url", "", "URL to fetch as the original clip")
	mimicURL       = flag.String("mimic-url", "", "URL to fetch as the mimic clip")
	enableHTTP     = flag.Bool("http", false, "Serve the HTTP/WebSocket API alongside the TUI")
	port           = flag.Int("port", 0, "HTTP port (default: 8930)")
	noMDNS         = flag.Bool("no-mdns", false, "Disable mDNS advertisement of the HTTP API")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		multiWriter := io.MultiWriter(os.Stdout, f)
		log.SetOutput(multiWriter)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting %s %s", version.Product, version.Version)

	rt, err := app.Setup(cfg, app.Options{})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := rt.Controller
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = ctrl.Run(ctx)
	}()

	if err := ctrl.Load(ctx); err != nil {
		log.Printf("Stored clips not loaded: %v", err)
	}
	loadInitialClips(ctx, ctrl)

	if *enableHTTP {
		srv, err := server.New(server.Config{
			Port:       cfg.Port,
			EnableMDNS: !*noMDNS,
			Controller: ctrl,
		})
		if err != nil {
			log.Fatalf("Failed to create HTTP server: %v", err)
		}
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()
		defer srv.Stop()
	}

	// TUI setup
	var tuiProg *tea.Program
	var control *ui.Control
	tuiDone := make(chan struct{})

	if useTUI {
		control = ui.NewControl()
		tuiProg, err = ui.Run(control)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go func() {
			defer close(tuiDone)
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		go handleControl(ctx, ctrl, control)
	} else {
		close(tuiDone)
	}

	states, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()
	go forwardStates(states, tuiProg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if control != nil {
		select {
		case <-control.Quit:
			log.Printf("Received quit signal from TUI")
		case <-sigChan:
			log.Printf("Shutdown signal received")
			tuiProg.Quit()
		}
	} else {
		<-sigChan
		log.Printf("Shutdown signal received")
	}

	<-tuiDone
	cancel()
	<-runDone
	log.Printf("Stopped")
}

// loadConfig layers set flags over the environment
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *maxSeconds != 0 {
		cfg.MaxSeconds = *maxSeconds
	}
	if *sampleRate != 0 {
		cfg.SampleRate = *sampleRate
	}
	if *port != 0 {
		cfg.Port = *port
	}
	return cfg, cfg.Validate()
}

// loadInitialClips applies the -upload-* and -*-url flags
func loadInitialClips(ctx context.Context, ctrl *app.Controller) {
	files := []struct {
		kind app.Kind
		path string
	}{
		{app.KindOriginal, *uploadOriginal},
		{app.KindMimic, *uploadMimic},
	}
	for _, file := range files {
		if file.path == "" {
			continue
		}
		data, err := os.ReadFile(file.path)
		if err != nil {
			log.Printf("Failed to read %s: %v", file.path, err)
			continue
		}
		if err := ctrl.Upload(file.kind, data, ""); err != nil {
			log.Printf("Failed to load %s from %s: %v", file.kind, file.path, err)
		}
	}

	urls := []struct {
		kind app.Kind
		url  string
	}{
		{app.KindOriginal, *originalURL},
		{app.KindMimic, *mimicURL},
	}
	for _, u := range urls {
		if u.url == "" {
			continue
		}
		if err := ctrl.FetchClip(ctx, u.kind, u.url); err != nil {
			log.Printf("Failed to fetch %s from %s: %v", u.kind, u.url, err)
		}
	}
}

// forwardStates feeds the TUI, or logs status changes without one
func forwardStates(states <-chan app.State, tuiProg *tea.Program) {
	var lastStatus string
	for st := range states {
		if tuiProg != nil {
			tuiProg.Send(ui.StateMsg(st))
			continue
		}
		if st.TransportStatus != lastStatus {
			lastStatus = st.TransportStatus
			log.Printf("Status: %s", lastStatus)
		}
	}
}

// handleControl processes commands from the TUI
func handleControl(ctx context.Context, ctrl *app.Controller, control *ui.Control) {
	for {
		select {
		case cmd := <-control.Commands:
			if err := apply(ctx, ctrl, cmd); err != nil {
				log.Printf("Command %d failed: %v", cmd.Action, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func apply(ctx context.Context, ctrl *app.Controller, cmd ui.Command) error {
	switch cmd.Action {
	case ui.ActionRecord:
		return ctrl.ToggleRecording(cmd.Kind)
	case ui.ActionPreview:
		return ctrl.Preview(cmd.Selection)
	case ui.ActionStopPlayback:
		return ctrl.StopPlayback()
	case ui.ActionToggle:
		return ctrl.Toggle(cmd.Track)
	case ui.ActionStop:
		return ctrl.StopTrack(cmd.Track)
	case ui.ActionSeekBy:
		return ctrl.SeekBy(cmd.Track, cmd.Delta)
	case ui.ActionCycleSource:
		return ctrl.CycleSource(cmd.Track)
	case ui.ActionClear:
		return ctrl.ClearStorage(ctx)
	}
	return nil
}
