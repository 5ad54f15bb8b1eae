package holdem

import (
	"github.com/lox/pokertable/internal/betting"
	"github.com/lox/pokertable/internal/deck"
	"github.com/lox/pokertable/internal/game"
)

// startHand deals a fresh hand: advances the button, reseeds the deck,
// deals hole cards and opens the preflop round.
func (g *Game) startHand(s *State) error {
	if s.Phase != PhaseLobby && s.Phase != PhaseHandEnd {
		return game.Errorf(game.KindWrongPhase, "cannot start a hand during %s", s.Phase)
	}

	funded := 0
	for _, seat := range s.Seats {
		if seat.Stack > 0 {
			funded++
		}
	}
	if funded < MinPlayers {
		return game.Errorf(game.KindInsufficientPlayers,
			"need at least %d funded seats to deal, have %d", MinPlayers, funded)
	}

	s.HandNumber++
	s.Phase = PhaseHandStart

	// The button starts at seat 0 and then moves to the next funded seat
	if s.HandNumber == 1 {
		s.DealerSeat = 0
	} else {
		n := len(s.Seats)
		for i := 1; i <= n; i++ {
			cand := s.Seats[(s.DealerSeat+i)%n]
			if cand.Stack > 0 {
				s.DealerSeat = cand.SeatIndex
				break
			}
		}
	}

	for _, seat := range s.Seats {
		seat.Folded = false
		seat.AllIn = false
		seat.InHand = seat.Stack > 0
		seat.IsDealer = seat.SeatIndex == s.DealerSeat
	}

	s.Board = []deck.Card{}
	s.Pots = []betting.Pot{}
	s.Showdown = nil
	s.Contributions = map[string]int{}
	s.HoleCards = map[string][]deck.Card{}
	inHand := s.inHandSeats()
	for _, seat := range inHand {
		s.Contributions[seat.PlayerID] = 0
	}

	// Deck order is a pure function of (seed, hand number) unless a
	// preset deck pins it
	var d *deck.Deck
	if g.opts.TestDeck != nil {
		d = deck.NewOrdered(g.opts.TestDeck)
	} else {
		rng := deck.NewLCG(s.Seed + int64(s.HandNumber))
		d = deck.New()
		d.Shuffle(rng)
	}

	// One card at a time around the table, twice
	for round := 0; round < 2; round++ {
		for _, seat := range inHand {
			card, ok := d.Deal()
			if !ok {
				return game.Errorf(game.KindInternal, "deck exhausted while dealing hole cards")
			}
			s.HoleCards[seat.PlayerID] = append(s.HoleCards[seat.PlayerID], card)
		}
	}
	s.Deck = d.Cards()

	s.logf("hand %d: %s has the button", s.HandNumber, s.Seats[s.DealerSeat].PlayerID)

	s.Phase = PhasePreflop
	g.openPreflop(s)
	return nil
}

// openPreflop posts the blinds and seats the preflop rotation. Heads-up
// the dealer posts the small blind and opens the action.
func (g *Game) openPreflop(s *State) {
	inHand := s.inHandSeats()

	var sb, bb, first *SeatState
	if len(inHand) == 2 {
		sb = s.Seats[s.DealerSeat]
		bb = s.nextInHand(s.DealerSeat)
		first = sb
	} else {
		sb = s.nextInHand(s.DealerSeat)
		bb = s.nextInHand(sb.SeatIndex)
		first = s.nextInHand(bb.SeatIndex)
	}

	s.RoundBase = cloneIntMap(s.Contributions)
	s.Betting = betting.NewRound("preflop", rotateSeats(inHand, first.SeatIndex), s.BigBlind,
		betting.WithForcedBet(sb.PlayerID, s.SmallBlind),
		betting.WithForcedBet(bb.PlayerID, s.BigBlind),
		betting.WithFirstToAct(first.PlayerID),
	)
	s.Log = append(s.Log, s.Betting.Log...)
	s.syncFromRound()
}

// step performs one closed-round transition: deal the next street, or
// run the showdown after the river or once at most one seat remains.
func (g *Game) step(s *State) {
	if len(s.liveSeats()) <= 1 {
		g.runShowdown(s)
		return
	}
	switch s.Phase {
	case PhasePreflop:
		g.dealStreet(s, PhaseFlop, 3)
	case PhaseFlop:
		g.dealStreet(s, PhaseTurn, 1)
	case PhaseTurn:
		g.dealStreet(s, PhaseRiver, 1)
	case PhaseRiver:
		g.runShowdown(s)
	}
}

// advancePhase steps a closed round forward. It is how all-in hands
// run out the remaining streets.
func (g *Game) advancePhase(s *State) error {
	if !s.Phase.hasBetting() || s.Betting == nil {
		return game.Errorf(game.KindWrongPhase, "nothing to advance during %s", s.Phase)
	}
	if !s.Betting.RoundClosed {
		return game.Errorf(game.KindWrongPhase, "the %s betting round is still open", s.Betting.Label)
	}
	g.step(s)
	return nil
}

// dealStreet reveals count community cards and opens the next betting
// round. No burn cards are dealt.
func (g *Game) dealStreet(s *State, next Phase, count int) {
	d := deck.NewOrdered(s.Deck)
	cards := d.DealN(count)
	s.Board = append(s.Board, cards...)
	s.Deck = d.Cards()
	s.Phase = next
	s.logf("%s: %s", next, deck.Codes(cards))

	// All non-folded seats ride into the new round; all-in seats carry
	// empty stacks and never act
	live := s.liveSeats()
	anchor := s.nextLive(s.DealerSeat)

	var first *SeatState
	n := len(s.Seats)
	for i := 1; i <= n; i++ {
		st := s.Seats[(s.DealerSeat+i)%n]
		if st.InHand && !st.Folded && st.Stack > 0 {
			first = st
			break
		}
	}

	s.RoundBase = cloneIntMap(s.Contributions)
	opts := make([]betting.RoundOption, 0, 1)
	if first != nil {
		opts = append(opts, betting.WithFirstToAct(first.PlayerID))
	}
	s.Betting = betting.NewRound(next.String(), rotateSeats(live, anchor.SeatIndex), s.BigBlind, opts...)
	s.syncFromRound()
}

// nextLive returns the first non-folded in-hand seat strictly after
// index from, wrapping around the table
func (s *State) nextLive(from int) *SeatState {
	n := len(s.Seats)
	for i := 1; i <= n; i++ {
		st := s.Seats[(from+i)%n]
		if st.InHand && !st.Folded {
			return st
		}
	}
	return nil
}

// rotateSeats converts seats to the engine's turn order, rotated so
// the seat at firstIndex leads
func rotateSeats(seats []*SeatState, firstIndex int) []betting.Seat {
	start := 0
	for i, st := range seats {
		if st.SeatIndex == firstIndex {
			start = i
			break
		}
	}
	out := make([]betting.Seat, 0, len(seats))
	for i := 0; i < len(seats); i++ {
		st := seats[(start+i)%len(seats)]
		out = append(out, betting.Seat{PlayerID: st.PlayerID, Stack: st.Stack})
	}
	return out
}

// syncFromRound folds the betting round's effects back into the seats
// and the hand-wide contribution and pot accounting
func (s *State) syncFromRound() {
	r := s.Betting
	if r == nil {
		return
	}
	for id, p := range r.Players {
		seat := s.seat(id)
		if seat == nil {
			continue
		}
		seat.Stack = p.Stack
		if p.Folded {
			seat.Folded = true
		}
		s.Contributions[id] = s.RoundBase[id] + p.TotalContribution
		seat.AllIn = seat.Stack == 0 && s.Contributions[id] > 0 && !seat.Folded
	}
	s.rebuildHandPots()
}

// rebuildHandPots layers the hand-wide pots from cumulative
// contributions. These are authoritative for showdown eligibility even
// though each betting round also tracks its own layering.
func (s *State) rebuildHandPots() {
	order := make([]string, 0, len(s.Seats))
	folded := make(map[string]bool, len(s.Seats))
	for _, seat := range s.Seats {
		if !seat.InHand {
			continue
		}
		order = append(order, seat.PlayerID)
		folded[seat.PlayerID] = seat.Folded
	}
	s.Pots = betting.BuildPots(order, s.Contributions, folded)
}
