// ABOUTME: WebSocket state feed and remote commands
// ABOUTME: Pushes state/update on every change and executes client/command
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/protocol"
	"github.com/harperreed/flipit/internal/version"
	"github.com/harperreed/flipit/pkg/transport"
)

const (
	sendBufferSize = 16
	writeDeadline  = 10 * time.Second
	pingInterval   = 30 * time.Second
	commandTimeout = 30 * time.Second
)

// client is one connected websocket
type client struct {
	ID   string
	Conn *websocket.Conn

	// Output channel for messages; never closed, done ends the writer
	sendChan chan interface{}
	done     chan struct{}
	doneOnce sync.Once
}

func (c *client) close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.shuttingDown() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New WebSocket connection from %s", r.RemoteAddr)

	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(conn)
}

// handleConnection manages a client connection until it disconnects
func (s *Server) handleConnection(conn *websocket.Conn) {
	c := &client{
		ID:       uuid.New().String(),
		Conn:     conn,
		sendChan: make(chan interface{}, sendBufferSize),
		done:     make(chan struct{}),
	}

	s.clientsMu.Lock()
	s.clients[c.ID] = c
	s.clientsMu.Unlock()

	defer func() {
		s.removeClient(c)
		conn.Close()
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.clientWriter(c)
	}()

	hello := protocol.ServerHello{
		ServerID: s.serverID,
		ClientID: c.ID,
		Name:     s.config.Name,
		Version:  protocol.ProtocolVersion,
		Product:  version.Product,
		Software: version.Version,
	}
	s.sendMessage(c, protocol.TypeServerHello, hello)

	states, unsubscribe := s.ctrl.Subscribe()
	defer unsubscribe()

	go func() {
		for st := range states {
			if !s.sendMessage(c, protocol.TypeStateUpdate, st) {
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error from %s: %v", c.ID, err)
			}
			break
		}

		s.handleClientMessage(c, data)
	}

	c.close()
	<-writerDone
	log.Printf("Client %s disconnected", c.ID)
}

// clientWriter serializes all writes to the connection
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.sendChan:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				c.Conn.Close()
				return
			}

		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				c.close()
				c.Conn.Close()
				return
			}
		}
	}
}

// sendMessage queues a message, waiting while the client's buffer is full.
// It reports false once the client is gone.
func (s *Server) sendMessage(c *client, msgType string, payload interface{}) bool {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	select {
	case c.sendChan <- msg:
		return true
	case <-c.done:
		return false
	}
}

func (s *Server) handleClientMessage(c *client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeClientCommand:
		var cmd protocol.ClientCommand
		if err := protocol.DecodePayload(msg.Payload, &cmd); err != nil {
			log.Printf("Invalid command from %s: %v", c.ID, err)
			return
		}
		s.handleCommand(c, cmd)
	default:
		if s.config.Debug {
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

// handleCommand runs a command off the read loop so a slow fetch does not
// hold up the connection
func (s *Server) handleCommand(c *client, cmd protocol.ClientCommand) {
	if s.config.Debug {
		log.Printf("Client %s command: %s %s %v", c.ID, cmd.Command, cmd.Track, cmd.Value)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		result := protocol.CommandResult{ID: cmd.ID, Command: cmd.Command, OK: true}
		if err := s.execute(ctx, cmd); err != nil {
			result.OK = false
			result.Error = err.Error()
		}
		s.sendMessage(c, protocol.TypeCommandResult, result)
	}()
}

// execute maps a wire command onto a controller operation
func (s *Server) execute(ctx context.Context, cmd protocol.ClientCommand) error {
	switch cmd.Command {
	case protocol.CommandPlay, protocol.CommandPause, protocol.CommandToggle,
		protocol.CommandStop, protocol.CommandSeek, protocol.CommandSeekBy,
		protocol.CommandSource, protocol.CommandCycle:
		id, err := transport.ParseTrackID(cmd.Track)
		if err != nil {
			return err
		}
		return s.executeTrack(id, cmd)

	case protocol.CommandPreview:
		name, err := cmd.StringValue()
		if err != nil {
			return err
		}
		sel, err := transport.ParseSelection(name)
		if err != nil {
			return err
		}
		return s.ctrl.Preview(sel)

	case protocol.CommandStopAll:
		return s.ctrl.StopPlayback()

	case protocol.CommandRecord:
		kind, err := commandKind(cmd)
		if err != nil {
			return err
		}
		return s.ctrl.ToggleRecording(kind)

	case protocol.CommandStopRecord:
		return s.ctrl.StopRecording()

	case protocol.CommandClear:
		return s.ctrl.ClearStorage(ctx)

	case protocol.CommandFetch:
		var v protocol.FetchValue
		if err := protocol.DecodePayload(cmd.Value, &v); err != nil {
			return err
		}
		kind, err := app.ParseKind(v.Kind)
		if err != nil {
			return err
		}
		if v.URL == "" {
			return fmt.Errorf("fetch: url is required")
		}
		return s.ctrl.FetchClip(ctx, kind, v.URL)
	}

	return fmt.Errorf("unknown command %q", cmd.Command)
}

func (s *Server) executeTrack(id transport.TrackID, cmd protocol.ClientCommand) error {
	switch cmd.Command {
	case protocol.CommandPlay:
		return s.ctrl.Play(id)
	case protocol.CommandPause:
		return s.ctrl.Pause(id)
	case protocol.CommandToggle:
		return s.ctrl.Toggle(id)
	case protocol.CommandStop:
		return s.ctrl.StopTrack(id)
	case protocol.CommandCycle:
		return s.ctrl.CycleSource(id)
	case protocol.CommandSource:
		name, err := cmd.StringValue()
		if err != nil {
			return err
		}
		sel, err := transport.ParseSelection(name)
		if err != nil {
			return err
		}
		return s.ctrl.SwitchSource(id, sel)
	}

	v, err := cmd.FloatValue()
	if err != nil {
		return err
	}
	if cmd.Command == protocol.CommandSeekBy {
		return s.ctrl.SeekBy(id, v)
	}
	return s.ctrl.Seek(id, v)
}

// commandKind reads the clip kind from Value, falling back to Track
func commandKind(cmd protocol.ClientCommand) (app.Kind, error) {
	name, err := cmd.StringValue()
	if err != nil {
		name = cmd.Track
	}
	return app.ParseKind(name)
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	c.close()
	delete(s.clients, c.ID)
}

// closeClients drops every websocket so handlers can return
func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		c.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.Conn.Close()
	}
}

// ClientCount returns the number of connected websocket clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
