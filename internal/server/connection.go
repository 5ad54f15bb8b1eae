package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/protocol"
	"github.com/lox/pokertable/internal/table"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// How long a request may wait for its table slot before Busy
	actTimeout = 5 * time.Second
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection is one websocket client: a player's seat subscription or
// a spectator. It attaches to at most one table at a time.
type Connection struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	playerID  string
	tableID   string
	registry  *table.Registry
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a connection wrapper around an upgraded socket
func NewConnection(conn *websocket.Conn, logger *log.Logger, registry *table.Registry) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *protocol.Message, 256),
		registry: registry,
		logger:   logger.WithPrefix("conn"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the read and write pumps until either exits
func (c *Connection) Start() {
	g := new(errgroup.Group)
	g.Go(c.readPump)
	g.Go(c.writePump)

	go func() {
		if err := g.Wait(); err != nil {
			c.logger.Debug("Connection pumps stopped", "err", err)
		}
	}()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client. A full send buffer
// closes the connection rather than blocking the publisher.
func (c *Connection) SendMessage(msg *protocol.Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Send channel already closed during shutdown
			c.logger.Debug("Send on closed connection", "err", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID, empty for spectators
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetTable associates this connection with a table
func (c *Connection) SetTable(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableID = tableID
}

// GetTable returns the associated table ID
func (c *Connection) GetTable() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableID
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() error {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return nil
		default:
		}

		var msg protocol.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("Websocket error", "err", err)
				return err
			}
			return nil
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "err", err)
				return err
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}

		case <-c.ctx.Done():
			return nil
		}
	}
}

// handleMessage dispatches one inbound message
func (c *Connection) handleMessage(msg *protocol.Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case protocol.TypeJoinTable:
		var data protocol.JoinTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, game.KindInvalidInput, "invalid join_table payload")
			return
		}
		c.handleJoinTable(msg.RequestID, data)

	case protocol.TypeLeaveTable:
		var data protocol.LeaveTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, game.KindInvalidInput, "invalid leave_table payload")
			return
		}
		c.handleLeaveTable(msg.RequestID, data)

	case protocol.TypeAction:
		var data protocol.ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, game.KindInvalidInput, "invalid action payload")
			return
		}
		c.handleAction(msg.RequestID, data)

	case protocol.TypeResync:
		var data protocol.ResyncData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, game.KindInvalidInput, "invalid resync payload")
			return
		}
		c.handleResync(msg.RequestID, data)

	case protocol.TypeListTables:
		c.handleListTables(msg.RequestID)

	default:
		c.sendError(msg.RequestID, game.KindUnknownAction, "unknown message type: "+msg.Type.String())
	}
}

// sendReply sends a typed response correlated to the request
func (c *Connection) sendReply(requestID string, msgType protocol.MessageType, data any) {
	reply, err := protocol.NewMessage(msgType, data)
	if err != nil {
		c.logger.Error("Failed to create reply", "type", msgType, "err", err)
		return
	}
	reply.RequestID = requestID
	_ = c.SendMessage(reply)
}

// sendError reports a rejected request to the client
func (c *Connection) sendError(requestID string, kind game.ErrorKind, message string) {
	c.sendReply(requestID, protocol.TypeError, protocol.ErrorData{
		Kind:    kind.String(),
		Message: message,
	})
}

func (c *Connection) handleJoinTable(requestID string, data protocol.JoinTableData) {
	c.logger.Info("Join table request", "tableId", data.TableID, "player", data.PlayerID)

	tbl, ok := c.registry.Get(data.TableID)
	if !ok {
		c.sendError(requestID, game.KindInvalidInput, "unknown table: "+data.TableID)
		return
	}

	seated := false
	if data.PlayerID != "" {
		if !tbl.Seated(data.PlayerID) {
			c.sendError(requestID, game.KindNotSeated, "player "+data.PlayerID+" is not seated at table "+data.TableID)
			return
		}
		seated = true
	}

	c.SetTable(data.TableID)
	c.SetPlayer(data.PlayerID)

	c.sendReply(requestID, protocol.TypeJoined, protocol.JoinedData{
		TableID:  data.TableID,
		PlayerID: data.PlayerID,
		Seated:   seated,
		Players:  tbl.Players(),
	})

	// Push the current views so the client renders immediately
	ctx, cancel := context.WithTimeout(c.ctx, actTimeout)
	defer cancel()
	if err := tbl.Resync(ctx, data.PlayerID); err != nil {
		c.sendError(requestID, game.KindOf(err), err.Error())
	}
}

func (c *Connection) handleLeaveTable(requestID string, data protocol.LeaveTableData) {
	c.logger.Info("Leave table request", "tableId", data.TableID, "player", c.GetPlayer())

	if c.GetTable() != data.TableID {
		c.sendError(requestID, game.KindInvalidInput, "not attached to table: "+data.TableID)
		return
	}

	c.SetTable("")
	c.SetPlayer("")

	c.sendReply(requestID, protocol.TypeLeft, protocol.LeftData{TableID: data.TableID})
}

func (c *Connection) handleAction(requestID string, data protocol.ActionData) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError(requestID, game.KindNotSeated, "join a table as a player before acting")
		return
	}

	tableID := data.TableID
	if tableID == "" {
		tableID = c.GetTable()
	}
	tbl, ok := c.registry.Get(tableID)
	if !ok {
		c.sendError(requestID, game.KindInvalidInput, "unknown table: "+tableID)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, actTimeout)
	defer cancel()

	if err := tbl.Act(ctx, playerID, data.Action); err != nil {
		c.sendError(requestID, game.KindOf(err), err.Error())
		return
	}
	// No direct reply, the mediator publishes fresh views
}

func (c *Connection) handleResync(requestID string, data protocol.ResyncData) {
	tableID := data.TableID
	if tableID == "" {
		tableID = c.GetTable()
	}
	tbl, ok := c.registry.Get(tableID)
	if !ok {
		c.sendError(requestID, game.KindInvalidInput, "unknown table: "+tableID)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, actTimeout)
	defer cancel()

	if err := tbl.Resync(ctx, c.GetPlayer()); err != nil {
		c.sendError(requestID, game.KindOf(err), err.Error())
	}
}

func (c *Connection) handleListTables(requestID string) {
	infos := c.registry.List()
	tables := make([]protocol.TableInfo, len(infos))
	for i, info := range infos {
		tables[i] = protocol.TableInfo{
			ID:       info.ID,
			Name:     info.Name,
			Players:  info.Players,
			Version:  info.Version,
			GameOver: info.GameOver,
		}
	}

	c.sendReply(requestID, protocol.TypeTableList, protocol.TableListData{Tables: tables})
}
