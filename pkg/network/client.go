// pkg/network/client.go
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/opd-ai/go-spacewar/pkg/config"
	"github.com/opd-ai/go-spacewar/pkg/engine"
	"github.com/opd-ai/go-spacewar/pkg/event"
)

// Client event types published on the client's event bus
const (
	ClientDisconnected event.Type = "client_disconnected"
)

// GameClient connects to a server, streams ship commands to it, and
// receives state snapshots on a channel. Connection attempts go through
// a circuit breaker so a dead server does not hang the caller forever.
type GameClient struct {
	conn           net.Conn
	clientID       string
	shipID         uint64
	serverAddress  string
	connected      bool
	receivedStates chan *engine.GameState
	eventBus       *event.Bus
	service        *NetworkService
	mu             sync.Mutex

	latency      time.Duration
	pingInterval time.Duration

	dialTimeout  time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewGameClient creates a client. Timeouts and circuit breaker settings
// come from the environment; snapshot delivery is best-effort and drops
// states when the receiver falls behind.
func NewGameClient(eventBus *event.Bus) *GameClient {
	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		envConfig = &config.EnvironmentConfig{
			DialTimeout:  10 * time.Second,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
	}

	return &GameClient{
		receivedStates: make(chan *engine.GameState, 10),
		eventBus:       eventBus,
		service:        NewNetworkService(envConfig),
		pingInterval:   5 * time.Second,
		dialTimeout:    envConfig.DialTimeout,
		readTimeout:    envConfig.ReadTimeout,
		writeTimeout:   envConfig.WriteTimeout,
	}
}

// Connect joins the game at the given address under the given player
// name. The dial and handshake run through the circuit breaker with
// retries.
func (c *GameClient) Connect(ctx context.Context, address, playerName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	c.serverAddress = address

	err := c.service.ExecuteWithRetry(ctx, func() error {
		return c.dialAndJoin(ctx, address, playerName)
	})
	if err != nil {
		return err
	}

	c.connected = true
	go c.messageLoop()
	go c.pingLoop()
	return nil
}

// dialAndJoin establishes the TCP connection and performs the join
// handshake. Called under the client lock.
func (c *GameClient) dialAndJoin(ctx context.Context, address, playerName string) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(dialCtx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}

	conn.SetDeadline(time.Now().Add(c.readTimeout))
	defer conn.SetDeadline(time.Time{})

	if err := writeMessage(conn, JoinRequest, JoinRequestData{PlayerName: playerName}); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send join request: %w", err)
	}

	msgType, data, err := readMessage(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to read join response: %w", err)
	}
	if msgType != JoinResponse {
		conn.Close()
		return fmt.Errorf("unexpected response type: %d", msgType)
	}

	var resp JoinResponseData
	if err := json.Unmarshal(data, &resp); err != nil {
		conn.Close()
		return fmt.Errorf("failed to parse join response: %w", err)
	}
	if !resp.Success {
		conn.Close()
		return fmt.Errorf("server rejected join: %s", resp.Error)
	}

	c.conn = conn
	c.clientID = resp.ClientID
	c.shipID = resp.ShipID
	return nil
}

// Disconnect leaves the game gracefully
func (c *GameClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false

	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	writeMessage(c.conn, LeaveNotification, nil)
	c.conn.Close()
	c.conn = nil
	return nil
}

// SendCommand sends the current control state to the server
func (c *GameClient) SendCommand(cmd ShipCommandData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return errors.New("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	defer c.conn.SetWriteDeadline(time.Time{})
	return writeMessage(c.conn, ShipCommand, cmd)
}

// ShipID returns the ID of the ship the server assigned to this client,
// valid after a successful Connect. The client finds its own ship in
// snapshots by this ID.
func (c *GameClient) ShipID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shipID
}

// States returns the channel state snapshots arrive on
func (c *GameClient) States() <-chan *engine.GameState {
	return c.receivedStates
}

// Latency returns the most recently measured round-trip time
func (c *GameClient) Latency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}

// messageLoop handles incoming messages from the server
func (c *GameClient) messageLoop() {
	for {
		c.mu.Lock()
		conn := c.conn
		connected := c.connected
		c.mu.Unlock()
		if !connected || conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		msgType, data, err := readMessage(conn)
		if err != nil {
			c.handleDisconnect()
			return
		}

		switch msgType {
		case StateUpdate:
			c.handleStateUpdate(data)

		case PingResponse:
			c.handlePingResponse(data)

		default:
			// Ignore unknown message types
		}
	}
}

// handleStateUpdate parses a snapshot and delivers it without blocking
func (c *GameClient) handleStateUpdate(data []byte) {
	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}

	select {
	case c.receivedStates <- &state:
	default:
		// Channel full, drop the state
	}
}

// handlePingResponse computes the round trip from the echoed send time
func (c *GameClient) handlePingResponse(data []byte) {
	var pingTime time.Time
	if err := json.Unmarshal(data, &pingTime); err != nil {
		return
	}

	c.mu.Lock()
	c.latency = time.Since(pingTime)
	c.mu.Unlock()
}

// pingLoop periodically measures latency
func (c *GameClient) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		<-ticker.C

		c.mu.Lock()
		connected := c.connected
		if connected {
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			writeMessage(c.conn, PingRequest, time.Now())
			c.conn.SetWriteDeadline(time.Time{})
		}
		c.mu.Unlock()
		if !connected {
			return
		}
	}
}

// handleDisconnect flags the client disconnected and notifies listeners
func (c *GameClient) handleDisconnect() {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	if !wasConnected {
		return
	}

	c.eventBus.Publish(&event.BaseEvent{
		EventType: ClientDisconnected,
		Source:    c,
	})
}
