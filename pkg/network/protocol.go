// pkg/network/protocol.go

// Package network provides multiplayer support: a server that runs the
// game loop and broadcasts state snapshots, and a client that joins a
// server, streams commands to its ship, and receives snapshots.
package network

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net"
)

// MessageType defines the type of network message
type MessageType byte

const (
	JoinRequest MessageType = iota
	JoinResponse
	LeaveNotification
	StateUpdate
	ShipCommand
	PingRequest
	PingResponse
)

// maxMessageSize is the largest payload a single frame can carry; the
// length field on the wire is a uint16.
const maxMessageSize = 65535

// JoinRequestData is what a client sends to enter the game
type JoinRequestData struct {
	PlayerName string `json:"playerName"`
}

// JoinResponseData is the server's answer to a join request
type JoinResponseData struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	ClientID string `json:"clientID,omitempty"`
	ShipID   uint64 `json:"shipID,omitempty"`
}

// ShipCommandData carries one tick's worth of control input. The
// booleans are level-triggered: the server applies them to the ship
// every tick until a new command replaces them. Fire is edge-triggered
// and consumed by the first tick that sees it.
type ShipCommandData struct {
	TurnLeft   bool `json:"turnLeft"`
	TurnRight  bool `json:"turnRight"`
	Accelerate bool `json:"accelerate"`
	Backwards  bool `json:"backwards"`
	Brake      bool `json:"brake"`
	Fire       bool `json:"fire"`
}

// readMessage reads one framed message from a connection. A frame is a
// one-byte message type, a big-endian uint16 payload length, and the
// JSON payload.
func readMessage(conn net.Conn) (MessageType, []byte, error) {
	var msgType MessageType
	if err := binary.Read(conn, binary.BigEndian, &msgType); err != nil {
		return 0, nil, err
	}

	var msgLen uint16
	if err := binary.Read(conn, binary.BigEndian, &msgLen); err != nil {
		return 0, nil, err
	}

	data := make([]byte, msgLen)
	if _, err := io.ReadFull(conn, data); err != nil {
		return 0, nil, err
	}

	return msgType, data, nil
}

// writeMessage serializes a message payload and writes one frame to a
// connection. A nil payload produces an empty frame.
func writeMessage(conn net.Conn, msgType MessageType, msg interface{}) error {
	var data []byte
	if msg != nil {
		var err error
		data, err = json.Marshal(msg)
		if err != nil {
			return err
		}
	}

	if len(data) > maxMessageSize {
		return errors.New("message too large")
	}

	if err := binary.Write(conn, binary.BigEndian, msgType); err != nil {
		return err
	}
	if err := binary.Write(conn, binary.BigEndian, uint16(len(data))); err != nil {
		return err
	}
	// Skip the zero-byte write: synchronous conns like net.Pipe block
	// on empty writes that the reader side never consumes.
	if len(data) > 0 {
		if _, err := conn.Write(data); err != nil {
			return err
		}
	}

	return nil
}
