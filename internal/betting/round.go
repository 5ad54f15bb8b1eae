// Package betting implements a generic wagering round: seat rotation,
// forced bets, action legality, round closure and layered pot
// construction. It knows nothing about cards or any particular game;
// the Hold'em module drives it once per street, and other wagering
// games can reuse it unchanged.
package betting

import (
	"fmt"

	"github.com/lox/pokertable/internal/game"
)

// Seat is one participant at round creation, in turn order
type Seat struct {
	PlayerID string
	Stack    int
}

// PlayerState tracks one seat inside a round. Fields are exported so a
// round survives JSON snapshotting.
type PlayerState struct {
	Folded            bool `json:"folded"`
	AllIn             bool `json:"allIn"`
	Stack             int  `json:"stack"`
	RoundContribution int  `json:"roundContribution"`
	TotalContribution int  `json:"totalContribution"`
	HasActed          bool `json:"hasActed"`
}

// Round is the state of one betting round. It is created fresh at the
// start of every street and replaced wholesale when the street ends.
type Round struct {
	// Label names the round for logs ("preflop", "flop", ...)
	Label string `json:"label"`
	// Order is the turn rotation, starting from the first seat listed
	Order   []string                `json:"order"`
	Players map[string]*PlayerState `json:"players"`
	// CurrentBet is the highest round contribution across seats
	CurrentBet int `json:"currentBet"`
	// MinRaiseIncrement is the last full raise size; an under-minimum
	// all-in raise does not update it
	MinRaiseIncrement int `json:"minRaiseIncrement"`
	MinOpenBet        int `json:"minOpenBet"`
	// ActivePlayerID is empty iff the round is closed or no seat can act
	ActivePlayerID string   `json:"activePlayerId"`
	RoundClosed    bool     `json:"roundClosed"`
	Pots           []Pot    `json:"pots"`
	Log            []string `json:"log"`
}

type roundConfig struct {
	forced     []forcedBet
	firstToAct string
}

type forcedBet struct {
	playerID string
	amount   int
}

// RoundOption configures round creation
type RoundOption func(*roundConfig)

// WithForcedBet posts a forced bet (blind, ante) for a seat before any
// action. Forced bets apply in the order given, each capped at the
// seat's stack.
func WithForcedBet(playerID string, amount int) RoundOption {
	return func(c *roundConfig) {
		c.forced = append(c.forced, forcedBet{playerID: playerID, amount: amount})
	}
}

// WithFirstToAct names the seat to act first. If the seat cannot act
// the first seat in order that needs action acts instead.
func WithFirstToAct(playerID string) RoundOption {
	return func(c *roundConfig) {
		c.firstToAct = playerID
	}
}

// NewRound creates a betting round. Seats are the participants in turn
// order with their current stacks; folded players are not passed in.
// Invalid construction input is a programmer error and panics.
func NewRound(label string, seats []Seat, minOpenBet int, opts ...RoundOption) *Round {
	if len(seats) == 0 {
		panic("betting: NewRound requires at least one seat")
	}
	if minOpenBet < 0 {
		panic("betting: minOpenBet cannot be negative")
	}

	var cfg roundConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Round{
		Label:      label,
		Order:      make([]string, 0, len(seats)),
		Players:    make(map[string]*PlayerState, len(seats)),
		MinOpenBet: minOpenBet,
	}

	for _, s := range seats {
		if s.PlayerID == "" {
			panic("betting: seat with empty player id")
		}
		if s.Stack < 0 {
			panic(fmt.Sprintf("betting: seat %s has negative stack %d", s.PlayerID, s.Stack))
		}
		if _, dup := r.Players[s.PlayerID]; dup {
			panic(fmt.Sprintf("betting: duplicate player id %s", s.PlayerID))
		}
		r.Order = append(r.Order, s.PlayerID)
		r.Players[s.PlayerID] = &PlayerState{Stack: s.Stack}
	}

	for _, fb := range cfg.forced {
		p, ok := r.Players[fb.playerID]
		if !ok {
			panic(fmt.Sprintf("betting: forced bet for unknown player %s", fb.playerID))
		}
		if fb.amount < 0 {
			panic(fmt.Sprintf("betting: negative forced bet %d for %s", fb.amount, fb.playerID))
		}
		r.post(fb.playerID, p, fb.amount)
	}

	for _, p := range r.Players {
		if p.RoundContribution > r.CurrentBet {
			r.CurrentBet = p.RoundContribution
		}
	}
	r.MinRaiseIncrement = maxInt(minOpenBet, r.CurrentBet)

	r.ActivePlayerID = r.pickFirstActor(cfg.firstToAct)
	if r.ActivePlayerID == "" {
		r.close()
	}
	r.rebuildPots()
	return r
}

// post applies a forced contribution capped at the seat's stack
func (r *Round) post(playerID string, p *PlayerState, amount int) {
	paid := minInt(amount, p.Stack)
	p.Stack -= paid
	p.RoundContribution += paid
	p.TotalContribution += paid
	if p.Stack == 0 && p.TotalContribution > 0 {
		p.AllIn = true
	}
	r.logf("%s posts %d", playerID, paid)
}

func (r *Round) pickFirstActor(preferred string) string {
	if preferred != "" {
		if p, ok := r.Players[preferred]; ok && r.needsAction(p) {
			return preferred
		}
	}
	for _, id := range r.Order {
		if r.needsAction(r.Players[id]) {
			return id
		}
	}
	return ""
}

// needsAction reports whether a seat still owes a decision this round
func (r *Round) needsAction(p *PlayerState) bool {
	if p.Folded || p.AllIn || p.Stack <= 0 {
		return false
	}
	return p.RoundContribution < r.CurrentBet || !p.HasActed
}

// NeedsAction reports whether playerID still owes a decision
func (r *Round) NeedsAction(playerID string) bool {
	p, ok := r.Players[playerID]
	return ok && r.needsAction(p)
}

// CallAmount returns what playerID must add to match the current bet.
// The amount is nominal: a shorter stack may call for less.
func (r *Round) CallAmount(playerID string) int {
	p, ok := r.Players[playerID]
	if !ok {
		return 0
	}
	return r.CurrentBet - p.RoundContribution
}

// NonFolded returns the ids of seats still in the round, in turn order
func (r *Round) NonFolded() []string {
	out := make([]string, 0, len(r.Order))
	for _, id := range r.Order {
		if !r.Players[id].Folded {
			out = append(out, id)
		}
	}
	return out
}

// advanceFrom moves the action to the next seat after lastActor that
// still needs action, closing the round when nobody does.
func (r *Round) advanceFrom(lastActor string) {
	if len(r.NonFolded()) <= 1 {
		r.close()
		return
	}

	start := 0
	for i, id := range r.Order {
		if id == lastActor {
			start = i
			break
		}
	}
	for i := 1; i <= len(r.Order); i++ {
		id := r.Order[(start+i)%len(r.Order)]
		if r.needsAction(r.Players[id]) {
			r.ActivePlayerID = id
			return
		}
	}
	r.close()
}

func (r *Round) close() {
	r.RoundClosed = true
	r.ActivePlayerID = ""
}

// Clone deep-copies the round
func (r *Round) Clone() *Round {
	c := *r
	c.Order = append([]string(nil), r.Order...)
	c.Players = make(map[string]*PlayerState, len(r.Players))
	for id, p := range r.Players {
		cp := *p
		c.Players[id] = &cp
	}
	c.Pots = make([]Pot, len(r.Pots))
	for i, p := range r.Pots {
		cp := p
		cp.Eligible = append([]string(nil), p.Eligible...)
		c.Pots[i] = cp
	}
	c.Log = append([]string(nil), r.Log...)
	return &c
}

// Contributions returns each seat's total contribution this round
func (r *Round) Contributions() map[string]int {
	out := make(map[string]int, len(r.Players))
	for id, p := range r.Players {
		out[id] = p.TotalContribution
	}
	return out
}

// FoldedPlayers returns the folded flag per seat
func (r *Round) FoldedPlayers() map[string]bool {
	out := make(map[string]bool, len(r.Players))
	for id, p := range r.Players {
		out[id] = p.Folded
	}
	return out
}

// rebuildPots recomputes the round-local pot layering
func (r *Round) rebuildPots() {
	r.Pots = BuildPots(r.Order, r.Contributions(), r.FoldedPlayers())
}

func (r *Round) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// ensureActive validates that playerID may act right now
func (r *Round) ensureActive(playerID string) (*PlayerState, error) {
	if r.RoundClosed {
		return nil, game.Errorf(game.KindRoundClosed, "betting round is closed")
	}
	p, ok := r.Players[playerID]
	if !ok || playerID != r.ActivePlayerID {
		return nil, game.Errorf(game.KindNotYourTurn, "it is not %s's turn to act", playerID)
	}
	return p, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
