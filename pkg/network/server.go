// pkg/network/server.go
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/opd-ai/go-spacewar/pkg/config"
	"github.com/opd-ai/go-spacewar/pkg/engine"
	"github.com/opd-ai/go-spacewar/pkg/entity"
	"github.com/opd-ai/go-spacewar/pkg/logging"
	"github.com/opd-ai/go-spacewar/pkg/validation"
)

// Server runs the authoritative simulation and fans state snapshots out
// to connected clients. The game world is only ever touched from the
// server's game loop goroutine: connection goroutines hand joins,
// leaves, and ship commands over through queues that a controller
// drains between ticks.
type Server struct {
	listener net.Listener
	game     *engine.Game
	logger   *logging.Logger
	limiter  *validation.RateLimiter

	clients     map[string]*Client
	clientsLock sync.RWMutex

	joins  chan *pendingJoin
	leaves chan *entity.Ship

	running       bool
	maxClients    int
	ticksPerState uint64
	tick          atomic.Uint64
}

// Client represents one connected player
type Client struct {
	ID         string
	Conn       net.Conn
	Ship       *entity.Ship
	PlayerName string
	Connected  bool
	LastInput  time.Time

	mu      sync.Mutex
	command ShipCommandData

	writeMu sync.Mutex
}

// send writes one frame to the client's connection. The game loop and
// the per-connection reader both send frames to the same conn, so
// every write goes through this lock to keep frames whole.
func (c *Client) send(msgType MessageType, msg interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeMessage(c.Conn, msgType, msg)
}

// pendingJoin asks the game loop to create a ship for a new client
type pendingJoin struct {
	reply chan *entity.Ship
}

// NewServer creates a server around a game. The server registers a
// controller on the game that feeds queued client input to the player
// ships, so the caller must drive the game through the server's Start
// rather than running its own tick loop.
func NewServer(game *engine.Game, cfg *config.NetworkConfig) *Server {
	ticksPerState := uint64(cfg.TicksPerState)
	if ticksPerState == 0 {
		ticksPerState = 1
	}
	s := &Server{
		game:          game,
		logger:        logging.NewLogger(),
		limiter:       validation.NewRateLimiter(cfg.MaxInputRate, time.Second),
		clients:       make(map[string]*Client),
		joins:         make(chan *pendingJoin, cfg.MaxClients),
		leaves:        make(chan *entity.Ship, cfg.MaxClients),
		maxClients:    cfg.MaxClients,
		ticksPerState: ticksPerState,
	}
	game.Controllers = append(game.Controllers, engine.ControllerFunc(s.tickControl))
	return s
}

// Start begins listening and launches the accept and game loops
func (s *Server) Start(address string) error {
	var err error
	s.listener, err = net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	s.running = true

	go s.acceptConnections()
	go s.gameLoop()

	s.logger.Info(context.Background(), "server started", "address", address)
	return nil
}

// Stop shuts the server down: all clients are disconnected and the
// game loop exits after the current tick.
func (s *Server) Stop() {
	s.running = false

	s.clientsLock.Lock()
	for _, client := range s.clients {
		client.Conn.Close()
	}
	s.clientsLock.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.limiter.Close()

	s.logger.Info(context.Background(), "server stopped")
}

// tickTimingInterval is how many ticks pass between timing log lines,
// five seconds at the default tick rate
const tickTimingInterval = 100

// gameLoop drives the simulation at the configured tick rate and
// broadcasts a snapshot every ticksPerState ticks.
func (s *Server) gameLoop() {
	for s.running {
		s.game.WaitForTick()
		tick := s.tick.Add(1)
		if tick%s.ticksPerState == 0 {
			s.broadcastState()
		}
		if tick%tickTimingInterval == 0 {
			s.logTickTiming(tick)
		}
	}
}

// logTickTiming reports the wall-clock cost of the last tick's phases.
// Runs on the game loop goroutine, the only writer of those counters.
func (s *Server) logTickTiming(tick uint64) {
	s.logger.Debug(context.Background(), "tick timing",
		"tick", tick,
		"gravitation", s.game.World.TimeForGravitation,
		"collisions", s.game.World.TimeForCollisions,
		"update", s.game.TimeToUpdate,
		"waiting", s.game.TimeWaiting,
	)
}

// tickControl runs on the game loop between ticks. It admits pending
// joins, applies every client's latest command to its ship, and buries
// the ships of departed clients.
func (s *Server) tickControl() {
	for {
		select {
		case join := <-s.joins:
			join.reply <- s.game.AddShip()
			continue
		case ship := <-s.leaves:
			s.game.RemoveShip(ship)
			continue
		default:
		}
		break
	}

	s.clientsLock.RLock()
	defer s.clientsLock.RUnlock()
	for _, client := range s.clients {
		if !client.Connected {
			continue
		}
		client.mu.Lock()
		cmd := client.command
		client.command.Fire = false
		client.mu.Unlock()
		applyCommand(client.Ship, cmd)
	}
}

// applyCommand translates a wire command into ship commands
func applyCommand(ship *entity.Ship, cmd ShipCommandData) {
	if cmd.TurnLeft {
		ship.TurnLeft()
	}
	if cmd.TurnRight {
		ship.TurnRight()
	}
	if cmd.Accelerate {
		ship.Accelerate()
	}
	if cmd.Backwards {
		ship.Backwards()
	}
	if cmd.Brake {
		ship.Brake()
	}
	if cmd.Fire {
		ship.Launch()
	}
}

// acceptConnections accepts new client connections until the server
// stops
func (s *Server) acceptConnections() {
	for s.running {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running {
				s.logger.Error(context.Background(), "accept failed", err)
			}
			continue
		}

		s.clientsLock.RLock()
		clientCount := len(s.clients)
		s.clientsLock.RUnlock()

		if clientCount >= s.maxClients {
			s.logger.Warn(context.Background(), "rejecting connection, server full",
				"remote", conn.RemoteAddr().String())
			conn.Close()
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection performs the join handshake and then processes the
// client's messages until it disconnects.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	client, err := s.admitClient(ctx, conn)
	if err != nil {
		s.logger.Warn(ctx, "join rejected", "remote", conn.RemoteAddr().String(), "reason", err.Error())
		writeMessage(conn, JoinResponse, JoinResponseData{Success: false, Error: err.Error()})
		return
	}

	// Reply before publishing the client: once it is in s.clients the
	// game loop may broadcast to it, and the join response must be the
	// first frame on the wire.
	err = client.send(JoinResponse, JoinResponseData{
		Success:  true,
		ClientID: client.ID,
		ShipID:   uint64(client.Ship.GetID()),
	})
	if err != nil {
		s.logger.Warn(ctx, "join reply failed", "remote", conn.RemoteAddr().String(), "error", err.Error())
		s.leaves <- client.Ship
		return
	}

	s.clientsLock.Lock()
	s.clients[client.ID] = client
	s.clientsLock.Unlock()

	s.logger.Info(ctx, "client joined",
		"client_id", client.ID,
		"player", client.PlayerName,
		"ship_id", uint64(client.Ship.GetID()),
	)

	s.handleClientMessages(ctx, client)
}

// admitClient reads and validates the join request and creates the
// client's ship through the game loop. The caller registers the client
// after the join handshake completes.
func (s *Server) admitClient(ctx context.Context, conn net.Conn) (*Client, error) {
	msgType, data, err := readMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("reading join request: %w", err)
	}
	if msgType != JoinRequest {
		return nil, fmt.Errorf("expected join request, got %d", msgType)
	}

	var joinReq JoinRequestData
	if err := json.Unmarshal(data, &joinReq); err != nil {
		return nil, fmt.Errorf("parsing join request: %w", err)
	}

	name, err := validation.ValidatePlayerName(joinReq.PlayerName)
	if err != nil {
		return nil, err
	}

	join := &pendingJoin{reply: make(chan *entity.Ship, 1)}
	s.joins <- join
	var ship *entity.Ship
	select {
	case ship = <-join.reply:
	case <-time.After(10 * time.Second):
		return nil, errors.New("game loop not responding")
	}

	return &Client{
		ID:         uuid.New().String(),
		Conn:       conn,
		Ship:       ship,
		PlayerName: name,
		Connected:  true,
		LastInput:  time.Now(),
	}, nil
}

// handleClientMessages processes messages from a connected client
func (s *Server) handleClientMessages(ctx context.Context, client *Client) {
	for client.Connected && s.running {
		msgType, data, err := readMessage(client.Conn)
		if err != nil {
			if err != io.EOF && s.running {
				s.logger.Warn(ctx, "read failed", "client_id", client.ID, "error", err.Error())
			}
			break
		}

		switch msgType {
		case ShipCommand:
			s.handleShipCommand(ctx, client, data)

		case PingRequest:
			client.send(PingResponse, json.RawMessage(data))

		case LeaveNotification:
			s.logger.Info(ctx, "client leaving", "client_id", client.ID)
			client.Connected = false

		default:
			s.logger.Warn(ctx, "unknown message type", "client_id", client.ID, "type", int(msgType))
		}
	}

	s.removeClient(ctx, client)
}

// handleShipCommand stores the client's latest command for the next
// tick, dropping it if the client exceeds its input rate.
func (s *Server) handleShipCommand(ctx context.Context, client *Client, data []byte) {
	if !s.limiter.Allow(client.ID) {
		return
	}

	var cmd ShipCommandData
	if err := json.Unmarshal(data, &cmd); err != nil {
		s.logger.Warn(ctx, "bad ship command", "client_id", client.ID, "error", err.Error())
		return
	}

	client.LastInput = time.Now()
	client.mu.Lock()
	fire := client.command.Fire || cmd.Fire
	client.command = cmd
	client.command.Fire = fire
	client.mu.Unlock()
}

// removeClient forgets a client and schedules its ship for removal
func (s *Server) removeClient(ctx context.Context, client *Client) {
	client.Connected = false

	s.clientsLock.Lock()
	delete(s.clients, client.ID)
	s.clientsLock.Unlock()

	s.leaves <- client.Ship

	s.logger.Info(ctx, "client removed", "client_id", client.ID)
}

// broadcastState sends the current snapshot to every connected client.
// Runs on the game loop goroutine, so the snapshot is consistent.
func (s *Server) broadcastState() {
	state := s.game.Snapshot()

	s.clientsLock.RLock()
	defer s.clientsLock.RUnlock()
	for _, client := range s.clients {
		if client.Connected {
			client.send(StateUpdate, state)
		}
	}
}

// Tick returns the number of ticks simulated since Start. Health
// probes use it to detect a wedged game loop.
func (s *Server) Tick() uint64 {
	return s.tick.Load()
}

// Addr returns the address the server listens on, or the empty string
// before Start
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.clientsLock.RLock()
	defer s.clientsLock.RUnlock()
	return len(s.clients)
}
