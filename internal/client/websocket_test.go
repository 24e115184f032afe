// ABOUTME: Tests for the WebSocket client
// ABOUTME: Runs against a scripted feed served by httptest
package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/protocol"
)

// feed greets, pushes one state and acknowledges every command
func feed(t *testing.T, helloVersion int) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteJSON(protocol.Message{
			Type:    protocol.TypeServerHello,
			Payload: protocol.ServerHello{Name: "Feed", Version: helloVersion, ClientID: "c1"},
		})
		conn.WriteJSON(protocol.Message{
			Type:    protocol.TypeStateUpdate,
			Payload: app.State{TransportStatus: "No playback running.", MaxSeconds: 120},
		})

		for {
			var msg protocol.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			var cmd protocol.ClientCommand
			protocol.DecodePayload(msg.Payload, &cmd)
			conn.WriteJSON(protocol.Message{
				Type:    protocol.TypeCommandResult,
				Payload: protocol.CommandResult{ID: cmd.ID, Command: cmd.Command, OK: cmd.Command != "dance", Error: ""},
			})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func addr(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestNewClient(t *testing.T) {
	c := NewClient(Config{ServerAddr: "localhost:8930"})
	if c == nil {
		t.Fatal("expected client to be created")
	}
	if c.config.Path != "/ws" {
		t.Errorf("expected default path /ws, got %s", c.config.Path)
	}
	if c.IsConnected() {
		t.Error("new client should not be connected")
	}
}

func TestConnectAndFollow(t *testing.T) {
	srv := feed(t, protocol.ProtocolVersion)
	c := NewClient(Config{ServerAddr: addr(srv), Path: "/"})
	if err := c.Connect(); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer c.Close()

	if c.Hello().Name != "Feed" {
		t.Errorf("expected hello from Feed, got %q", c.Hello().Name)
	}

	select {
	case st := <-c.States:
		if st.MaxSeconds != 120 {
			t.Errorf("expected 120, got %d", st.MaxSeconds)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no state received")
	}

	tests := []struct {
		command string
		ok      bool
	}{
		{protocol.CommandToggle, true},
		{"dance", false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			id, err := c.Send(protocol.ClientCommand{Command: tt.command, Track: "A"})
			if err != nil {
				t.Fatalf("send failed: %v", err)
			}

			select {
			case res := <-c.Results:
				if res.ID != id {
					t.Errorf("expected id %s, got %s", id, res.ID)
				}
				if res.OK != tt.ok {
					t.Errorf("expected ok=%v, got %v", tt.ok, res.OK)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("no result received")
			}
		})
	}
}

func TestConnectRejectsVersion(t *testing.T) {
	srv := feed(t, protocol.ProtocolVersion+1)
	c := NewClient(Config{ServerAddr: addr(srv), Path: "/"})
	if err := c.Connect(); err == nil {
		c.Close()
		t.Fatal("expected version mismatch error")
	}
	if c.IsConnected() {
		t.Error("client should be disconnected after a failed handshake")
	}
}

func TestSendWhenDisconnected(t *testing.T) {
	c := NewClient(Config{ServerAddr: "localhost:1"})
	if _, err := c.Send(protocol.ClientCommand{Command: protocol.CommandPlay}); err == nil {
		t.Error("expected error when not connected")
	}
}
