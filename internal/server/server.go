// ABOUTME: HTTP and WebSocket surface for Flip It
// ABOUTME: Exposes the controller as a REST API and a live state feed
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/config"
	"github.com/harperreed/flipit/internal/discovery"
)

// DefaultName is advertised when Config.Name is empty
const DefaultName = "Flip It"

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	Debug      bool
	Controller *app.Controller
}

// Server serves one controller over HTTP
type Server struct {
	config   Config
	serverID string
	ctrl     *app.Controller

	upgrader websocket.Upgrader

	httpServer *http.Server
	mux        *http.ServeMux

	clients   map[string]*client
	clientsMu sync.RWMutex

	mdnsManager *discovery.Manager

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// New creates a server for the given controller
func New(cfg Config) (*Server, error) {
	if cfg.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultPort
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	s := &Server{
		config:   cfg,
		serverID: uuid.New().String(),
		ctrl:     cfg.Controller,
		mux:      http.NewServeMux(),
		// The default CheckOrigin refuses cross-origin handshakes
		upgrader: websocket.Upgrader{},
		clients:  make(map[string]*client),
		stopChan: make(chan struct{}),
	}
	s.routes()

	return s, nil
}

// Handler returns the routed handler, for embedding or tests
func (s *Server) Handler() http.Handler {
	return sameOrigin(s.mux)
}

// sameOrigin rejects state-changing requests sent by a page on another
// origin. Requests without an Origin header (curl, the remote shell) pass.
func sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if origin := r.Header.Get("Origin"); origin != "" && !originMatchesHost(origin, r.Host) {
				log.Printf("Rejected cross-origin %s %s from %s", r.Method, r.URL.Path, origin)
				writeJSON(w, http.StatusForbidden, errorResponse{Error: "cross-origin request refused"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func originMatchesHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/version", s.handleVersion)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("DELETE /api/storage", s.handleClearStorage)

	s.mux.HandleFunc("POST /api/clips/{kind}", s.handleUpload)
	s.mux.HandleFunc("GET /api/clips/{kind}", s.handleDownload)
	s.mux.HandleFunc("GET /api/clips/{kind}/reversed.wav", s.handleReversed)
	s.mux.HandleFunc("POST /api/clips/{kind}/fetch", s.handleFetch)

	s.mux.HandleFunc("POST /api/record/stop", s.handleStopRecording)
	s.mux.HandleFunc("POST /api/record/{kind}", s.handleStartRecording)

	s.mux.HandleFunc("POST /api/preview/stop", s.handleStopPlayback)
	s.mux.HandleFunc("POST /api/preview/{sel}", s.handlePreview)

	s.mux.HandleFunc("POST /api/tracks/{id}/{action}", s.handleTrack)
	s.mux.HandleFunc("GET /api/tracks/{id}/waveform.png", s.handleWaveform)

	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

// Start serves until Stop is called or the listener fails
func (s *Server) Start() error {
	log.Printf("Server starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("HTTP server listening on %s", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Server shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	// Hijacked websocket connections are not closed by Shutdown
	s.closeClients()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.wg.Wait()
	log.Printf("Server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Server) shuttingDown() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	return s.isShutdown
}
