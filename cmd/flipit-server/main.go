// ABOUTME: Entry point for the headless Flip It server
// ABOUTME: Serves the HTTP/WebSocket API without a terminal UI
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/config"
	"github.com/harperreed/flipit/internal/server"
	"github.com/harperreed/flipit/internal/version"
)

var (
	port       = flag.Int("port", 0, "HTTP server port (default: 8930)")
	name       = flag.String("name", "", "Server friendly name (default: hostname-flipit)")
	dbPath     = flag.String("db", "", "SQLite database path (default: $FLIPIT_DB or flipit.db)")
	logFile    = flag.String("log-file", "flipit-server.log", "Log file path")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	noRecord   = flag.Bool("no-record", false, "Disable microphone recording")
	maxSeconds = flag.Int("max-seconds", 0, "Recording ceiling in seconds (default: 120)")
	sampleRate = flag.Int("sample-rate", 0, "Output and capture sample rate (default: 48000)")
)

func main() {
	flag.Parse()

	// Set up logging (both file and console)
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	multiWriter := io.MultiWriter(os.Stdout, f)
	log.SetOutput(multiWriter)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
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
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	serverName := *name
	if serverName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serverName = fmt.Sprintf("%s-flipit", hostname)
	}

	log.Printf("Starting %s server %s: %s on port %d", version.Product, version.Version, serverName, cfg.Port)
	if *debug {
		log.Printf("Debug logging enabled")
	}
	log.Printf("Logging to: %s", *logFile)
	log.Printf("Press Ctrl-C to stop")

	rt, err := app.Setup(cfg, app.Options{NoRecorder: *noRecord})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = rt.Controller.Run(ctx)
	}()
	if err := rt.Controller.Load(ctx); err != nil {
		log.Printf("Stored clips not loaded: %v", err)
	}

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		Name:       serverName,
		EnableMDNS: !*noMDNS,
		Debug:      *debug,
		Controller: rt.Controller,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	// Pending saves finish before the database closes
	cancel()
	<-runDone
	log.Printf("Server stopped")
}
