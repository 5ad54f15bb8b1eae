// Package protocol defines the websocket wire format shared by the
// server and its clients: a typed envelope carrying a JSON payload per
// message type. Views travel as raw JSON so the protocol stays
// agnostic of the game module producing them.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/lox/pokertable/internal/game"
)

// MessageType identifies a websocket message
type MessageType string

const (
	// Client to server
	TypeJoinTable  MessageType = "join_table"
	TypeLeaveTable MessageType = "leave_table"
	TypeAction     MessageType = "action"
	TypeResync     MessageType = "resync"
	TypeListTables MessageType = "list_tables"

	// Server to client
	TypeJoined     MessageType = "joined"
	TypeLeft       MessageType = "left"
	TypePublicView MessageType = "public_view"
	TypePlayerView MessageType = "player_view"
	TypeTableList  MessageType = "table_list"
	TypeError      MessageType = "error"
)

// String returns the wire name of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope every websocket frame carries
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage wraps data in an envelope stamped with the current time
func NewMessage(messageType MessageType, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = bytes
	}

	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server

// JoinTableData attaches the connection to a table. An empty PlayerID
// joins as a spectator; a seated PlayerID also subscribes the
// connection to that seat's private views.
type JoinTableData struct {
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId,omitempty"`
}

// LeaveTableData detaches the connection from a table
type LeaveTableData struct {
	TableID string `json:"tableId"`
}

// ActionData submits a game action for the connection's player
type ActionData struct {
	TableID string      `json:"tableId"`
	Action  game.Action `json:"action"`
}

// ResyncData asks the table to republish its current views
type ResyncData struct {
	TableID string `json:"tableId"`
}

// Server → Client

// JoinedData confirms an attach
type JoinedData struct {
	TableID  string   `json:"tableId"`
	PlayerID string   `json:"playerId,omitempty"`
	Seated   bool     `json:"seated"`
	Players  []string `json:"players"`
}

// LeftData confirms a detach
type LeftData struct {
	TableID string `json:"tableId"`
}

// PublicViewData carries the shared table view
type PublicViewData struct {
	TableID string          `json:"tableId"`
	View    json.RawMessage `json:"view"`
}

// PlayerViewData carries one seat's private view
type PlayerViewData struct {
	TableID  string          `json:"tableId"`
	PlayerID string          `json:"playerId"`
	View     json.RawMessage `json:"view"`
}

// TableInfo summarizes one table in a listing
type TableInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Players  []string `json:"players"`
	Version  uint64   `json:"version"`
	GameOver bool     `json:"gameOver"`
}

// TableListData lists the server's tables
type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

// ErrorData reports a rejected request. Kind is the stable
// game.ErrorKind name; Message is free-form.
type ErrorData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
