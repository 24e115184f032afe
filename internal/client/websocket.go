// ABOUTME: WebSocket client for a remote Flip It server
// ABOUTME: Follows the state feed and sends transport commands
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/protocol"
)

const handshakeTimeout = 5 * time.Second

// Config holds client configuration
type Config struct {
	ServerAddr string

	// Path defaults to /ws
	Path string
}

// Client follows one server's state feed
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	hello protocol.ServerHello

	// States carries every state/update; slow readers see only the newest
	States chan app.State

	// Results carries command acknowledgements
	Results chan protocol.CommandResult

	connected bool
	nextID    int
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = "/ws"
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		States:  make(chan app.State, 1),
		Results: make(chan protocol.CommandResult, 10),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect dials the server and waits for its hello
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

func (c *Client) handshake() error {
	c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}
	if msg.Type != protocol.TypeServerHello {
		return fmt.Errorf("expected %s, got %s", protocol.TypeServerHello, msg.Type)
	}

	var hello protocol.ServerHello
	if err := protocol.DecodePayload(msg.Payload, &hello); err != nil {
		return err
	}
	if hello.Version != protocol.ProtocolVersion {
		return fmt.Errorf("unsupported protocol version %d", hello.Version)
	}

	c.mu.Lock()
	c.hello = hello
	c.mu.Unlock()

	log.Printf("Connected to %s (%s %s)", hello.Name, hello.Product, hello.Software)
	return nil
}

// Hello returns the server's greeting
func (c *Client) Hello() protocol.ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hello
}

func (c *Client) readMessages() {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}
		c.handleJSONMessage(data)
	}
}

func (c *Client) handleJSONMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeStateUpdate:
		var st app.State
		if err := protocol.DecodePayload(msg.Payload, &st); err != nil {
			log.Printf("Invalid state update: %v", err)
			return
		}
		// Replace any unread state
		select {
		case <-c.States:
		default:
		}
		select {
		case c.States <- st:
		default:
		}

	case protocol.TypeCommandResult:
		var res protocol.CommandResult
		if err := protocol.DecodePayload(msg.Payload, &res); err != nil {
			return
		}
		if !res.OK {
			log.Printf("Command %s failed: %s", res.Command, res.Error)
		}
		select {
		case c.Results <- res:
		case <-c.ctx.Done():
		}

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// Send issues a command and returns its id
func (c *Client) Send(cmd protocol.ClientCommand) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return "", fmt.Errorf("not connected")
	}
	if cmd.ID == "" {
		c.nextID++
		cmd.ID = strconv.Itoa(c.nextID)
	}

	msg := protocol.Message{
		Type:    protocol.TypeClientCommand,
		Payload: cmd,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return "", fmt.Errorf("failed to send %s: %w", cmd.Command, err)
	}
	return cmd.ID, nil
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// Done is closed once the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
