package main

import (
	"encoding/json"
	"net/url"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/holdem"
	"github.com/lox/pokertable/internal/protocol"
)

// Messages delivered to the bubbletea program by the read loop.
type (
	publicViewMsg struct {
		tableID string
		view    holdem.PublicView
	}
	playerViewMsg struct {
		tableID string
		view    holdem.PlayerView
	}
	joinedMsg    struct{ data protocol.JoinedData }
	tableListMsg struct{ tables []protocol.TableInfo }
	serverErrMsg struct{ data protocol.ErrorData }
	closedMsg    struct{ err error }
)

// Client is the websocket connection to the server. Writes are
// serialized; reads happen on the single ReadLoop goroutine.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger
	mu     sync.Mutex
}

// Dial connects to the server's websocket endpoint
func Dial(addr string, logger *log.Logger) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, logger: logger.WithPrefix("client")}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send writes one message to the server
func (c *Client) Send(msgType protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(msgType, data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// JoinTable attaches to a table, as a player when playerID is set
func (c *Client) JoinTable(tableID, playerID string) error {
	return c.Send(protocol.TypeJoinTable, protocol.JoinTableData{
		TableID:  tableID,
		PlayerID: playerID,
	})
}

// Act submits a game action at the joined table
func (c *Client) Act(tableID string, act game.Action) error {
	return c.Send(protocol.TypeAction, protocol.ActionData{
		TableID: tableID,
		Action:  act,
	})
}

// Resync asks the table to republish its current views
func (c *Client) Resync(tableID string) error {
	return c.Send(protocol.TypeResync, protocol.ResyncData{TableID: tableID})
}

// ListTables asks for the server's table listing
func (c *Client) ListTables() error {
	return c.Send(protocol.TypeListTables, nil)
}

// ReadLoop reads server messages and forwards them as tea messages
// until the connection drops.
func (c *Client) ReadLoop(send func(tea.Msg)) {
	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.logger.Debug("Connection closed", "err", err)
			send(closedMsg{err: err})
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)
		switch msg.Type {
		case protocol.TypePublicView:
			var data protocol.PublicViewData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				continue
			}
			var view holdem.PublicView
			if err := json.Unmarshal(data.View, &view); err != nil {
				c.logger.Error("Bad public view", "err", err)
				continue
			}
			send(publicViewMsg{tableID: data.TableID, view: view})

		case protocol.TypePlayerView:
			var data protocol.PlayerViewData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				continue
			}
			var view holdem.PlayerView
			if err := json.Unmarshal(data.View, &view); err != nil {
				c.logger.Error("Bad player view", "err", err)
				continue
			}
			send(playerViewMsg{tableID: data.TableID, view: view})

		case protocol.TypeJoined:
			var data protocol.JoinedData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				continue
			}
			send(joinedMsg{data: data})

		case protocol.TypeTableList:
			var data protocol.TableListData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				continue
			}
			send(tableListMsg{tables: data.Tables})

		case protocol.TypeError:
			var data protocol.ErrorData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				continue
			}
			send(serverErrMsg{data: data})
		}
	}
}
