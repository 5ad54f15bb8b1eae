// Package holdem implements No-Limit Texas Hold'em for 2 to 6 seats on
// top of the generic betting engine. It satisfies the game.Module
// contract: every operation takes a state and returns a fresh one, and
// a failed action leaves the input state untouched.
package holdem

import (
	"fmt"

	"github.com/lox/pokertable/internal/betting"
	"github.com/lox/pokertable/internal/deck"
	"github.com/lox/pokertable/internal/game"
)

const (
	// MinPlayers and MaxPlayers bound the seats at a table
	MinPlayers = 2
	MaxPlayers = 6

	// GameVersion tags persisted snapshots so a store can route state
	// back to a compatible module
	GameVersion = "holdem/1"
)

// Options configure a table. The zero value is not usable, construct
// through New which applies defaults.
type Options struct {
	Seed         int64
	InitialStack int
	SmallBlind   int
	BigBlind     int
	// TestDeck, when set, is used verbatim instead of shuffling. Tests
	// only.
	TestDeck []deck.Card
}

// Option mutates Options
type Option func(*Options)

// WithSeed sets the deterministic deal seed
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithInitialStack sets the chips each seat starts with
func WithInitialStack(stack int) Option {
	return func(o *Options) { o.InitialStack = stack }
}

// WithBlinds sets the small and big blind amounts
func WithBlinds(small, big int) Option {
	return func(o *Options) {
		o.SmallBlind = small
		o.BigBlind = big
	}
}

// WithTestDeck fixes the deal order, bypassing the shuffle
func WithTestDeck(cards []deck.Card) Option {
	return func(o *Options) {
		o.TestDeck = append([]deck.Card(nil), cards...)
	}
}

// Game is the Hold'em module. It holds only configuration; all table
// state lives in State values passed through the contract.
type Game struct {
	opts Options
}

// New builds a Hold'em module with the given options
func New(opts ...Option) *Game {
	o := Options{
		Seed:         1,
		InitialStack: 1000,
		SmallBlind:   5,
		BigBlind:     10,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.InitialStack <= 0 {
		panic(fmt.Sprintf("holdem: initial stack must be positive, got %d", o.InitialStack))
	}
	if o.SmallBlind <= 0 || o.BigBlind <= 0 {
		panic(fmt.Sprintf("holdem: blinds must be positive, got %d/%d", o.SmallBlind, o.BigBlind))
	}
	if o.TestDeck != nil && len(o.TestDeck) != deck.Size {
		panic(fmt.Sprintf("holdem: test deck must hold %d cards, got %d", deck.Size, len(o.TestDeck)))
	}
	return &Game{opts: o}
}

// InitialState seats the given players at a fresh table in the lobby
func (g *Game) InitialState(players []string) (game.State, error) {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return nil, game.Errorf(game.KindInvalidInput,
			"a table seats %d to %d players, got %d", MinPlayers, MaxPlayers, len(players))
	}
	seen := make(map[string]bool, len(players))
	seats := make([]*SeatState, len(players))
	for i, id := range players {
		if id == "" {
			return nil, game.Errorf(game.KindInvalidInput, "player id at seat %d is empty", i)
		}
		if seen[id] {
			return nil, game.Errorf(game.KindInvalidInput, "duplicate player id %s", id)
		}
		seen[id] = true
		seats[i] = &SeatState{
			PlayerID:  id,
			SeatIndex: i,
			Stack:     g.opts.InitialStack,
		}
	}

	return &State{
		Phase:         PhaseLobby,
		Seed:          g.opts.Seed,
		Seats:         seats,
		DealerSeat:    -1,
		SmallBlind:    g.opts.SmallBlind,
		BigBlind:      g.opts.BigBlind,
		Board:         []deck.Card{},
		Pots:          []betting.Pot{},
		Contributions: map[string]int{},
		Log:           []string{},
		PresetDeck:    g.opts.TestDeck != nil,
	}, nil
}

// ApplyAction advances the state by one player action. On success the
// returned state is a fresh value; on failure the error carries an
// ErrorKind and the input state is unchanged.
func (g *Game) ApplyAction(st game.State, playerID string, act game.Action) (game.State, error) {
	s, ok := st.(*State)
	if !ok || s == nil {
		return nil, game.Errorf(game.KindInternal, "holdem: unexpected state type %T", st)
	}
	if s.seat(playerID) == nil {
		return nil, game.Errorf(game.KindNotSeated, "player %s is not seated at this table", playerID)
	}

	next := s.clone()
	var err error
	switch act.Type {
	case game.ActionStartHand:
		err = g.startHand(next)
	case game.ActionAdvancePhase:
		err = g.advancePhase(next)
	case game.ActionFold, game.ActionCheck, game.ActionCall,
		game.ActionBet, game.ActionRaise, game.ActionAllIn:
		err = g.applyBetting(next, playerID, act)
	default:
		err = game.Errorf(game.KindUnknownAction, "unknown action type %q", act.Type)
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}

// applyBetting translates a wagering action onto the current round and
// folds the result back into hand-wide accounting.
func (g *Game) applyBetting(s *State, playerID string, act game.Action) error {
	if !s.Phase.hasBetting() || s.Betting == nil {
		return game.Errorf(game.KindWrongPhase, "no betting round in progress during %s", s.Phase)
	}

	logMark := len(s.Betting.Log)
	var err error
	switch act.Type {
	case game.ActionFold:
		err = s.Betting.Fold(playerID)
	case game.ActionCheck:
		err = s.Betting.Check(playerID)
	case game.ActionCall:
		err = s.Betting.Call(playerID)
	case game.ActionBet:
		amount, aerr := actionAmount(act, "bet")
		if aerr != nil {
			return aerr
		}
		err = s.Betting.Bet(playerID, amount)
	case game.ActionRaise:
		toAmount, aerr := raiseAmount(act)
		if aerr != nil {
			return aerr
		}
		err = s.Betting.RaiseTo(playerID, toAmount)
	case game.ActionAllIn:
		err = s.Betting.AllIn(playerID)
	}
	if err != nil {
		return err
	}

	s.Log = append(s.Log, s.Betting.Log[logMark:]...)
	s.syncFromRound()

	if s.Betting.RoundClosed {
		g.step(s)
	}
	return nil
}

func actionAmount(act game.Action, verb string) (int, error) {
	if act.Payload == nil || act.Payload.Amount <= 0 {
		return 0, game.Errorf(game.KindInvalidAmount, "%s requires a positive amount", verb)
	}
	return act.Payload.Amount, nil
}

func raiseAmount(act game.Action) (int, error) {
	if act.Payload == nil || act.Payload.ToAmount <= 0 {
		return 0, game.Errorf(game.KindInvalidAmount, "raise requires a positive toAmount")
	}
	return act.Payload.ToAmount, nil
}

// IsGameOver reports whether at most one seat still has chips
func (g *Game) IsGameOver(st game.State) bool {
	s, ok := st.(*State)
	if !ok || s == nil {
		return false
	}
	withChips := 0
	for _, seat := range s.Seats {
		if seat.Stack > 0 {
			withChips++
		}
	}
	return withChips <= 1
}

// Result returns the outcome of the last hand once it has finished
func (g *Game) Result(st game.State) (*game.Result, bool) {
	s, ok := st.(*State)
	if !ok || s == nil || s.Phase != PhaseHandEnd || s.Showdown == nil {
		return nil, false
	}

	awards := make(map[string]int, len(s.Showdown.Winners))
	for _, pa := range s.Showdown.PotAwards {
		for id, share := range pa.Shares {
			awards[id] += share
		}
	}

	res := &game.Result{
		Winners: append([]string(nil), s.Showdown.Winners...),
		Awards:  awards,
		Summary: s.Showdown.Summary,
	}
	if g.IsGameOver(s) {
		for _, seat := range s.Seats {
			if seat.Stack > 0 {
				res.Summary = fmt.Sprintf("%s; %s wins the table", res.Summary, seat.PlayerID)
				break
			}
		}
	}
	return res, true
}
