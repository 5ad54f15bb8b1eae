// Package table mediates between transports and game modules. A Table
// owns one game state, serializes all mutations through a single slot,
// and publishes fresh views after every successful action. It knows
// nothing about poker; the game.Module it wraps supplies the rules.
package table

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/history"
	"github.com/lox/pokertable/internal/tableid"
)

// Config describes a table to create. Module, Transport and Players are
// required; the rest default.
type Config struct {
	// ID identifies the table. Generated when empty.
	ID string
	// Name is the display name shown in table listings. Defaults to ID.
	Name string
	// Module supplies the game rules.
	Module game.Module
	// Players is the fixed seat roster, in seat order.
	Players []string
	// Transport receives view updates.
	Transport Transport
	// Recorder, when set, appends finished hands to the hand history.
	Recorder *history.Recorder
	// GameVersion tags persistence snapshots, e.g. holdem.GameVersion.
	GameVersion string
	// Logger for table events. Defaults to a discard logger.
	Logger *log.Logger
}

// Info is a point-in-time summary of a table, safe to read without
// touching the game state.
type Info struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Players  []string `json:"players"`
	Version  uint64   `json:"version"`
	GameOver bool     `json:"gameOver"`
}

// Table serializes access to one game. All mutations and reads of the
// game state go through a one-slot semaphore, so module calls never
// overlap; separate tables run independently.
type Table struct {
	ID   string
	Name string

	module    game.Module
	transport Transport
	recorder  *history.Recorder
	logger    *log.Logger

	slot chan struct{}

	// state and version are guarded by slot
	state   game.State
	version uint64

	players []string
	seated  map[string]bool

	gameVersion string

	infoMu sync.RWMutex
	info   Info
}

// New builds a table, asks the module for its lobby state and publishes
// the initial views.
func New(cfg Config) (*Table, error) {
	if cfg.Module == nil {
		return nil, fmt.Errorf("table: module is required")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("table: transport is required")
	}
	if cfg.ID == "" {
		cfg.ID = tableid.Generate()
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	st, err := cfg.Module.InitialState(cfg.Players)
	if err != nil {
		return nil, err
	}

	seated := make(map[string]bool, len(cfg.Players))
	for _, pid := range cfg.Players {
		seated[pid] = true
	}

	t := &Table{
		ID:          cfg.ID,
		Name:        cfg.Name,
		module:      cfg.Module,
		transport:   cfg.Transport,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger.With("table", cfg.ID),
		slot:        make(chan struct{}, 1),
		state:       st,
		players:     append([]string(nil), cfg.Players...),
		seated:      seated,
		gameVersion: cfg.GameVersion,
	}
	t.refreshInfo()
	t.publishLocked()

	return t, nil
}

// acquire takes the table slot, failing with Busy if ctx expires while
// waiting. An already-expired ctx never wins the race against a free
// slot.
func (t *Table) acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return game.Errorf(game.KindBusy, "table %s is busy", t.ID)
	default:
	}
	select {
	case t.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return game.Errorf(game.KindBusy, "table %s is busy", t.ID)
	}
}

func (t *Table) release() {
	<-t.slot
}

// Act applies one player action. On success the new state is committed
// and fresh views are published; on failure the state is untouched and
// nothing is published. The returned error carries a game.ErrorKind.
func (t *Table) Act(ctx context.Context, playerID string, act game.Action) error {
	if !t.Seated(playerID) {
		return game.Errorf(game.KindNotSeated, "player %s is not seated at table %s", playerID, t.ID)
	}
	if act.Type == game.ActionStartHand && len(t.players) < 2 {
		return game.Errorf(game.KindInsufficientPlayers, "table %s needs at least 2 players to start a hand", t.ID)
	}
	if err := t.acquire(ctx); err != nil {
		return err
	}
	defer t.release()

	_, hadResult := t.module.Result(t.state)

	next, err := t.module.ApplyAction(t.state, playerID, act)
	if err != nil {
		t.logger.Debug("Action rejected", "player", playerID, "action", act.Type, "kind", game.KindOf(err), "err", err)
		return err
	}

	t.state = next
	t.version++
	t.refreshInfo()
	t.logger.Debug("Action applied", "player", playerID, "action", act.Type, "version", t.version)

	public := t.publishLocked()

	if res, ok := t.module.Result(t.state); ok && !hadResult {
		if err := t.recorder.Record(res, public); err != nil {
			t.logger.Error("Failed to record hand", "err", err)
		}
	}
	return nil
}

// Resync republishes the current views: the shared view to the whole
// table and, when playerID is seated, that seat's private view. Clients
// call it after attaching or reconnecting.
func (t *Table) Resync(ctx context.Context, playerID string) error {
	if err := t.acquire(ctx); err != nil {
		return err
	}
	defer t.release()

	t.transport.PublishPublic(t.ID, t.module.PublicView(t.state))
	if t.seated[playerID] {
		t.transport.PublishPlayer(t.ID, playerID, t.module.PlayerView(t.state, playerID))
	}
	return nil
}

// Views projects the current state without mutating it. Repeated calls
// against an unchanged table return equal views.
func (t *Table) Views(ctx context.Context) (public any, players map[string]any, err error) {
	if err := t.acquire(ctx); err != nil {
		return nil, nil, err
	}
	defer t.release()

	public = t.module.PublicView(t.state)
	players = make(map[string]any, len(t.players))
	for _, pid := range t.players {
		players[pid] = t.module.PlayerView(t.state, pid)
	}
	return public, players, nil
}

// Snapshot wraps the current state in a persistence envelope.
func (t *Table) Snapshot(ctx context.Context) (game.Snapshot, error) {
	if err := t.acquire(ctx); err != nil {
		return game.Snapshot{}, err
	}
	defer t.release()

	return game.NewSnapshot(t.ID, t.gameVersion, t.state)
}

// Seated reports whether playerID holds a seat at this table
func (t *Table) Seated(playerID string) bool {
	return t.seated[playerID]
}

// Players returns the seat roster in seat order
func (t *Table) Players() []string {
	return append([]string(nil), t.players...)
}

// Info returns the cached table summary. It never blocks on the game
// slot, so listings stay responsive while a table is busy.
func (t *Table) Info() Info {
	t.infoMu.RLock()
	defer t.infoMu.RUnlock()
	return t.info
}

// Close flushes and closes the hand history recorder
func (t *Table) Close() error {
	return t.recorder.Close()
}

// publishLocked pushes the shared view first, then each seat's private
// view in seat order. Callers must hold the slot.
func (t *Table) publishLocked() any {
	public := t.module.PublicView(t.state)
	t.transport.PublishPublic(t.ID, public)
	for _, pid := range t.players {
		t.transport.PublishPlayer(t.ID, pid, t.module.PlayerView(t.state, pid))
	}
	return public
}

// refreshInfo recomputes the cached summary. Callers must hold the
// slot, except during construction.
func (t *Table) refreshInfo() {
	info := Info{
		ID:       t.ID,
		Name:     t.Name,
		Players:  append([]string(nil), t.players...),
		Version:  t.version,
		GameOver: t.module.IsGameOver(t.state),
	}
	t.infoMu.Lock()
	t.info = info
	t.infoMu.Unlock()
}
