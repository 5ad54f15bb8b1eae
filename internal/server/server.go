// Package server exposes the table registry over websockets. It is the
// development transport for the core: one connection per client,
// join/action/resync messages in, view publications out. The Server
// implements table.Transport, so the mediator publishes straight into
// the connection fan-out.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertable/internal/protocol"
	"github.com/lox/pokertable/internal/table"
)

const shutdownTimeout = 5 * time.Second

// Server owns the websocket listener and the connection set
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	registry    *table.Registry
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewServer creates a websocket server serving the given registry
func NewServer(addr string, registry *table.Registry, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Development transport, all origins accepted
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		registry:    registry,
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Handler returns the HTTP handler serving /ws and /health
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start runs the server until Stop is called or the listener fails
func (s *Server) Start() error {
	go s.run()

	httpServer := &http.Server{Addr: s.addr, Handler: s.Handler()}

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		s.logger.Info("Starting websocket server", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Stop shuts the server down and closes every connection
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket upgrades the request and starts the connection pumps
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "err", err)
		return
	}

	client := NewConnection(conn, s.logger, s.registry)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// PublishPublic implements table.Transport by broadcasting the shared
// view to every connection attached to the table.
func (s *Server) PublishPublic(tableID string, view any) {
	msg, err := viewMessage(protocol.TypePublicView, tableID, "", view)
	if err != nil {
		s.logger.Error("Failed to encode public view", "tableId", tableID, "err", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.GetTable() == tableID {
			if err := conn.SendMessage(msg); err == nil {
				count++
			}
		}
	}

	s.logger.Debug("Published public view", "tableId", tableID, "recipients", count)
}

// PublishPlayer implements table.Transport by sending a seat's private
// view to that player's connections at the table.
func (s *Server) PublishPlayer(tableID, playerID string, view any) {
	msg, err := viewMessage(protocol.TypePlayerView, tableID, playerID, view)
	if err != nil {
		s.logger.Error("Failed to encode player view", "tableId", tableID, "player", playerID, "err", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.GetTable() == tableID && conn.GetPlayer() == playerID {
			_ = conn.SendMessage(msg)
		}
	}
}

// viewMessage wraps a view projection in its wire envelope
func viewMessage(msgType protocol.MessageType, tableID, playerID string, view any) (*protocol.Message, error) {
	viewJSON, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}

	if msgType == protocol.TypePlayerView {
		return protocol.NewMessage(msgType, protocol.PlayerViewData{
			TableID:  tableID,
			PlayerID: playerID,
			View:     viewJSON,
		})
	}
	return protocol.NewMessage(msgType, protocol.PublicViewData{
		TableID: tableID,
		View:    viewJSON,
	})
}

// ConnectedPlayers returns the distinct player IDs currently attached
func (s *Server) ConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var players []string
	for conn := range s.connections {
		if playerID := conn.GetPlayer(); playerID != "" && !seen[playerID] {
			seen[playerID] = true
			players = append(players, playerID)
		}
	}

	return players
}
