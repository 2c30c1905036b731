// pkg/network/server_test.go
package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-spacewar/pkg/config"
	"github.com/opd-ai/go-spacewar/pkg/engine"
	"github.com/opd-ai/go-spacewar/pkg/event"
	"github.com/opd-ai/go-spacewar/pkg/logging"
)

func newTestServer(t *testing.T) (*Server, *engine.Game) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Ships = 0
	cfg.Network.TicksPerState = 1
	game := engine.New(cfg, rand.New(rand.NewPCG(1, 1)))
	return NewServer(game, &cfg.Network), game
}

func TestNewServer_ConfiguredFromNetworkConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Network.TicksPerState = 7
	cfg.Network.MaxClients = 8
	game := engine.New(cfg, rand.New(rand.NewPCG(1, 1)))

	controllers := len(game.Controllers)
	server := NewServer(game, &cfg.Network)

	if server.ticksPerState != 7 {
		t.Errorf("ticksPerState = %d, expected 7", server.ticksPerState)
	}
	if server.maxClients != 8 {
		t.Errorf("maxClients = %d, expected 8", server.maxClients)
	}
	if len(game.Controllers) != controllers+1 {
		t.Error("expected the server to register its input controller on the game")
	}
	if server.Addr() != "" {
		t.Errorf("Addr() = %q before Start, expected empty", server.Addr())
	}
}

func TestNewServer_ClampsZeroTicksPerState(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ships = 0
	cfg.Network.TicksPerState = 0
	game := engine.New(cfg, rand.New(rand.NewPCG(1, 1)))

	server := NewServer(game, &cfg.Network)
	if server.ticksPerState != 1 {
		t.Errorf("ticksPerState = %d with a zero config value, expected clamp to 1", server.ticksPerState)
	}
}

func TestApplyCommand(t *testing.T) {
	cfg := config.DefaultConfig()
	game := engine.New(cfg, rand.New(rand.NewPCG(1, 1)))
	ship := game.Ships[0]

	applyCommand(ship, ShipCommandData{TurnLeft: true, Accelerate: true})

	if ship.LeftThrust == 0 {
		t.Error("TurnLeft command did not arm the left thruster")
	}
	if ship.RightThrust != 0 {
		t.Error("RightThrust armed without a TurnRight command")
	}
	if ship.ForwardThrust == 0 {
		t.Error("Accelerate command did not arm the forward thruster")
	}

	before := game.World.Len()
	applyCommand(ship, ShipCommandData{Fire: true})
	if game.World.Len() != before+1 {
		t.Error("Fire command did not launch a missile")
	}
}

func TestServerClientRoundTrip(t *testing.T) {
	server, _ := newTestServer(t)
	if err := server.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	client := NewGameClient(event.NewEventBus())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Connect(ctx, server.Addr(), "Tester"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Disconnect()

	if client.ShipID() == 0 {
		t.Error("server did not assign a ship")
	}
	if server.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, expected 1", server.ClientCount())
	}

	var state *engine.GameState
	select {
	case state = <-client.States():
	case <-time.After(5 * time.Second):
		t.Fatal("no state snapshot arrived")
	}

	found := false
	for _, ship := range state.Ships {
		if ship.ID == client.ShipID() {
			found = true
		}
	}
	if !found {
		t.Errorf("snapshot does not contain the client's ship %d", client.ShipID())
	}

	if err := client.SendCommand(ShipCommandData{Accelerate: true}); err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}

	client.Disconnect()
	waitFor(t, func() bool { return server.ClientCount() == 0 }, "client removed after disconnect")
}

func TestServerRejectsInvalidName(t *testing.T) {
	server, _ := newTestServer(t)
	if err := server.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	client := NewGameClient(event.NewEventBus())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Connect(ctx, server.Addr(), "   "); err == nil {
		t.Error("expected the join to be rejected for a blank player name")
		client.Disconnect()
	}
	if server.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after a rejected join, expected 0", server.ClientCount())
	}
}

// Join repeatedly while the game loop is broadcasting a snapshot every
// tick; the join response must always be the first frame a new client
// reads, never a snapshot meant for the post-handshake stream.
func TestJoinResponseIsFirstFrame(t *testing.T) {
	server, _ := newTestServer(t)
	if err := server.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	for i := 0; i < 5; i++ {
		conn, err := net.Dial("tcp", server.Addr())
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}

		name := fmt.Sprintf("Pilot %d", i)
		if err := writeMessage(conn, JoinRequest, JoinRequestData{PlayerName: name}); err != nil {
			t.Fatalf("sending join request: %v", err)
		}

		msgType, data, err := readMessage(conn)
		if err != nil {
			t.Fatalf("reading join reply: %v", err)
		}
		if msgType != JoinResponse {
			t.Fatalf("first frame has type %d, expected the join response", msgType)
		}
		var reply JoinResponseData
		if err := json.Unmarshal(data, &reply); err != nil {
			t.Fatalf("parsing join reply: %v", err)
		}
		if !reply.Success {
			t.Fatalf("join rejected: %s", reply.Error)
		}
		conn.Close()
	}
}

// Flood pings from one goroutine while the game loop broadcasts
// snapshots to the same connection; every frame must still parse, so
// the two writers cannot have interleaved inside a frame.
func TestConcurrentWritesKeepFraming(t *testing.T) {
	server, _ := newTestServer(t)
	if err := server.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	conn, err := net.Dial("tcp", server.Addr())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if err := writeMessage(conn, JoinRequest, JoinRequestData{PlayerName: "Framer"}); err != nil {
		t.Fatalf("sending join request: %v", err)
	}
	if msgType, _, err := readMessage(conn); err != nil || msgType != JoinResponse {
		t.Fatalf("join handshake failed: type %d, err %v", msgType, err)
	}

	const pingCount = 40
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < pingCount; i++ {
			if err := writeMessage(conn, PingRequest, time.Now()); err != nil {
				return
			}
			time.Sleep(2 * time.Millisecond)
		}
	}()

	pings, snapshots := 0, 0
	deadline := time.Now().Add(5 * time.Second)
	for pings < pingCount || snapshots < 3 {
		conn.SetReadDeadline(deadline)
		msgType, data, err := readMessage(conn)
		if err != nil {
			t.Fatalf("stream broke after %d pings and %d snapshots: %v", pings, snapshots, err)
		}
		switch msgType {
		case PingResponse:
			var ts time.Time
			if err := json.Unmarshal(data, &ts); err != nil {
				t.Fatalf("garbled ping payload: %v", err)
			}
			pings++
		case StateUpdate:
			var state engine.GameState
			if err := json.Unmarshal(data, &state); err != nil {
				t.Fatalf("garbled snapshot payload: %v", err)
			}
			snapshots++
		default:
			t.Fatalf("unexpected frame type %d", msgType)
		}
	}
	<-done
}

func TestLogTickTiming(t *testing.T) {
	server, game := newTestServer(t)

	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	server.logger = &logging.Logger{Logger: slog.New(handler)}

	game.World.TimeForGravitation = 3 * time.Millisecond
	game.World.TimeForCollisions = 2 * time.Millisecond
	game.TimeToUpdate = 7 * time.Millisecond
	game.TimeWaiting = 40 * time.Millisecond

	server.logTickTiming(tickTimingInterval)

	out := buf.String()
	if !strings.Contains(out, "tick timing") {
		t.Fatalf("no timing line logged: %s", out)
	}
	for _, field := range []string{"gravitation", "collisions", "update", "waiting"} {
		if !strings.Contains(out, field) {
			t.Errorf("timing line is missing %q: %s", field, out)
		}
	}
}

// waitFor polls a condition until it holds or a generous deadline
// passes. The game loop runs on real time, so state changes land within
// a tick or two.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
