package table

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/history"
	"github.com/lox/pokertable/internal/holdem"
)

type publishEvent struct {
	public   bool
	tableID  string
	playerID string
	view     any
}

// recordingTransport captures every publish so tests can assert on
// ordering and fan-out.
type recordingTransport struct {
	mu     sync.Mutex
	events []publishEvent
}

func (rt *recordingTransport) PublishPublic(tableID string, view any) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.events = append(rt.events, publishEvent{public: true, tableID: tableID, view: view})
}

func (rt *recordingTransport) PublishPlayer(tableID, playerID string, view any) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.events = append(rt.events, publishEvent{tableID: tableID, playerID: playerID, view: view})
}

// take drains the captured events
func (rt *recordingTransport) take() []publishEvent {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	events := rt.events
	rt.events = nil
	return events
}

func newTestTable(t *testing.T, players []string) (*Table, *recordingTransport) {
	t.Helper()
	transport := &recordingTransport{}
	tbl, err := New(Config{
		ID:          "t-test",
		Name:        "Test Table",
		Module:      holdem.New(holdem.WithSeed(7)),
		Players:     players,
		Transport:   transport,
		GameVersion: holdem.GameVersion,
		Logger:      log.New(os.Stderr),
	})
	require.NoError(t, err)
	return tbl, transport
}

func TestNewPublishesLobbyViews(t *testing.T) {
	_, transport := newTestTable(t, []string{"p1", "p2"})

	events := transport.take()
	require.Len(t, events, 3)
	assert.True(t, events[0].public, "shared view must go out first")
	assert.Equal(t, "t-test", events[0].tableID)
	assert.Equal(t, "p1", events[1].playerID)
	assert.Equal(t, "p2", events[2].playerID)
}

func TestNewRejectsBadRoster(t *testing.T) {
	_, err := New(Config{
		Module:    holdem.New(),
		Players:   []string{"p1"},
		Transport: &recordingTransport{},
	})
	require.Error(t, err)
	assert.Equal(t, game.KindInvalidInput, game.KindOf(err))
}

func TestActPublishesViewsInOrder(t *testing.T) {
	tbl, transport := newTestTable(t, []string{"p1", "p2", "p3"})
	transport.take()

	require.NoError(t, tbl.Act(context.Background(), "p1", game.StartHand()))

	events := transport.take()
	require.Len(t, events, 4, "one shared view plus one per seat")
	assert.True(t, events[0].public)
	assert.Equal(t, "p1", events[1].playerID)
	assert.Equal(t, "p2", events[2].playerID)
	assert.Equal(t, "p3", events[3].playerID)

	_, ok := events[0].view.(holdem.PublicView)
	assert.True(t, ok, "shared event carries the public projection")
	_, ok = events[1].view.(holdem.PlayerView)
	assert.True(t, ok, "seat events carry player projections")
}

func TestUnseatedPlayerRejected(t *testing.T) {
	tbl, transport := newTestTable(t, []string{"p1", "p2"})
	transport.take()

	err := tbl.Act(context.Background(), "ghost", game.StartHand())
	require.Error(t, err)
	assert.Equal(t, game.KindNotSeated, game.KindOf(err))
	assert.Empty(t, transport.take(), "rejected actions publish nothing")
}

func TestFailedActionDoesNotPublish(t *testing.T) {
	tbl, transport := newTestTable(t, []string{"p1", "p2"})
	require.NoError(t, tbl.Act(context.Background(), "p1", game.StartHand()))
	transport.take()
	before := tbl.Info().Version

	// Heads-up the dealer acts first; p2 is out of turn
	err := tbl.Act(context.Background(), "p2", game.Fold())
	require.Error(t, err)
	assert.Equal(t, game.KindNotYourTurn, game.KindOf(err))
	assert.Empty(t, transport.take())
	assert.Equal(t, before, tbl.Info().Version, "version only moves on success")
}

func TestBusyWhenTableHeld(t *testing.T) {
	tbl, _ := newTestTable(t, []string{"p1", "p2"})

	tbl.slot <- struct{}{}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tbl.Act(ctx, "p1", game.StartHand())
	require.Error(t, err)
	assert.Equal(t, game.KindBusy, game.KindOf(err))

	<-tbl.slot
	require.NoError(t, tbl.Act(context.Background(), "p1", game.StartHand()))
}

func TestExpiredContextNeverWinsFreeSlot(t *testing.T) {
	tbl, _ := newTestTable(t, []string{"p1", "p2"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 20; i++ {
		_, _, err := tbl.Views(ctx)
		require.Error(t, err)
		assert.Equal(t, game.KindBusy, game.KindOf(err))
	}
}

func TestResyncRepublishes(t *testing.T) {
	tbl, transport := newTestTable(t, []string{"p1", "p2"})
	require.NoError(t, tbl.Act(context.Background(), "p1", game.StartHand()))
	transport.take()

	require.NoError(t, tbl.Resync(context.Background(), "p2"))
	events := transport.take()
	require.Len(t, events, 2)
	assert.True(t, events[0].public)
	assert.Equal(t, "p2", events[1].playerID)

	// Spectators get the shared view only
	require.NoError(t, tbl.Resync(context.Background(), "railbird"))
	events = transport.take()
	require.Len(t, events, 1)
	assert.True(t, events[0].public)
}

func TestViewsIdempotent(t *testing.T) {
	tbl, transport := newTestTable(t, []string{"p1", "p2"})
	require.NoError(t, tbl.Act(context.Background(), "p1", game.StartHand()))
	transport.take()

	public1, players1, err := tbl.Views(context.Background())
	require.NoError(t, err)
	public2, players2, err := tbl.Views(context.Background())
	require.NoError(t, err)

	json1, err := json.Marshal(public1)
	require.NoError(t, err)
	json2, err := json.Marshal(public2)
	require.NoError(t, err)
	assert.JSONEq(t, string(json1), string(json2))

	require.Len(t, players1, 2)
	for pid, view := range players1 {
		a, err := json.Marshal(view)
		require.NoError(t, err)
		b, err := json.Marshal(players2[pid])
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b))
	}

	assert.Empty(t, transport.take(), "projecting views publishes nothing")
}

func TestSnapshotEnvelope(t *testing.T) {
	tbl, _ := newTestTable(t, []string{"p1", "p2"})
	require.NoError(t, tbl.Act(context.Background(), "p1", game.StartHand()))

	snap, err := tbl.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t-test", snap.GameID)
	assert.Equal(t, holdem.GameVersion, snap.GameVersion)

	var state map[string]any
	require.NoError(t, json.Unmarshal(snap.State, &state))
	assert.Equal(t, "preflop", state["phase"])
}

func TestHistoryRecordedOnHandEnd(t *testing.T) {
	dir := t.TempDir()
	recorder, err := history.NewRecorder(history.Config{Dir: dir, TableID: "t-hist"}, log.New(os.Stderr))
	require.NoError(t, err)

	transport := &recordingTransport{}
	tbl, err := New(Config{
		ID:        "t-hist",
		Module:    holdem.New(holdem.WithSeed(7)),
		Players:   []string{"p1", "p2"},
		Transport: transport,
		Recorder:  recorder,
		Logger:    log.New(os.Stderr),
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Hand 1: the dealer folds, p2 wins uncontested
	require.NoError(t, tbl.Act(ctx, "p1", game.StartHand()))
	require.NoError(t, tbl.Act(ctx, "p1", game.Fold()))

	// Hand 2: the button has rotated, p2 folds
	require.NoError(t, tbl.Act(ctx, "p2", game.StartHand()))
	require.NoError(t, tbl.Act(ctx, "p2", game.Fold()))

	require.NoError(t, tbl.Close())

	data, err := os.ReadFile(filepath.Join(dir, "t-hist.jsonl"))
	require.NoError(t, err)

	var records []history.HandRecord
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec history.HandRecord
		require.NoError(t, json.Unmarshal(line, &rec))
		records = append(records, rec)
	}

	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[0].Seq)
	assert.Equal(t, []string{"p2"}, records[0].Winners)
	assert.Equal(t, uint64(2), records[1].Seq)
	assert.Equal(t, []string{"p1"}, records[1].Winners)
	assert.NotNil(t, records[0].View, "records carry the closing public view")
}

// stubModule is a minimal counter game for mediator-only tests
type stubModule struct{}

type stubState struct {
	Ticks int `json:"ticks"`
}

func (stubModule) InitialState(players []string) (game.State, error) {
	return &stubState{}, nil
}

func (stubModule) ApplyAction(st game.State, playerID string, act game.Action) (game.State, error) {
	s := st.(*stubState)
	return &stubState{Ticks: s.Ticks + 1}, nil
}

func (stubModule) PublicView(st game.State) any              { return st.(*stubState).Ticks }
func (stubModule) PlayerView(st game.State, pid string) any  { return st.(*stubState).Ticks }
func (stubModule) IsGameOver(st game.State) bool             { return false }
func (stubModule) Result(st game.State) (*game.Result, bool) { return nil, false }

func TestStartHandNeedsTwoSeats(t *testing.T) {
	tbl, err := New(Config{
		ID:        "solo",
		Module:    stubModule{},
		Players:   []string{"p1"},
		Transport: &recordingTransport{},
	})
	require.NoError(t, err)

	err = tbl.Act(context.Background(), "p1", game.StartHand())
	require.Error(t, err)
	assert.Equal(t, game.KindInsufficientPlayers, game.KindOf(err))

	// Other actions pass straight through to the module
	require.NoError(t, tbl.Act(context.Background(), "p1", game.Action{Type: "tick"}))
	assert.Equal(t, uint64(1), tbl.Info().Version)
}

func TestHistoryRecordsOncePerHand(t *testing.T) {
	dir := t.TempDir()
	recorder, err := history.NewRecorder(history.Config{Dir: dir, TableID: "t-once"}, log.New(os.Stderr))
	require.NoError(t, err)

	tbl, err := New(Config{
		ID:        "t-once",
		Module:    holdem.New(holdem.WithSeed(7)),
		Players:   []string{"p1", "p2"},
		Transport: &recordingTransport{},
		Recorder:  recorder,
		Logger:    log.New(os.Stderr),
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, tbl.Act(ctx, "p1", game.StartHand()))
	require.NoError(t, tbl.Act(ctx, "p1", game.Fold()))

	// Resyncs and view reads after the hand must not duplicate the record
	require.NoError(t, tbl.Resync(ctx, "p2"))
	_, _, err = tbl.Views(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), recorder.Hands())
}
