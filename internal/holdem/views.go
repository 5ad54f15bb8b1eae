package holdem

import (
	"github.com/lox/pokertable/internal/betting"
	"github.com/lox/pokertable/internal/deck"
	"github.com/lox/pokertable/internal/game"
)

// SeatView is a seat as everyone may see it
type SeatView struct {
	PlayerID  string `json:"playerId"`
	SeatIndex int    `json:"seatIndex"`
	Stack     int    `json:"stack"`
	Folded    bool   `json:"folded"`
	AllIn     bool   `json:"allIn"`
	InHand    bool   `json:"inHand"`
	IsDealer  bool   `json:"isDealer"`
}

// PublicView is the shared-display projection of a table. It never
// contains hole cards or the undealt deck.
type PublicView struct {
	Phase          string          `json:"phase"`
	HandNumber     int             `json:"handNumber"`
	Board          []deck.Card     `json:"board"`
	Seats          []SeatView      `json:"seats"`
	Pots           []betting.Pot   `json:"pots"`
	ActivePlayerID string          `json:"activePlayerId,omitempty"`
	CurrentBet     int             `json:"currentBet,omitempty"`
	Showdown       *ShowdownResult `json:"showdown,omitempty"`
	Log            []string        `json:"log"`
}

// PlayerView is one seat's private projection: the public view plus
// that player's hole cards and legal actions.
type PlayerView struct {
	PublicView
	PlayerID         string           `json:"playerId"`
	HoleCards        []deck.Card      `json:"holeCards,omitempty"`
	AvailableActions *betting.Actions `json:"availableActions,omitempty"`
}

// PublicView projects the state for the shared display
func (g *Game) PublicView(st game.State) any {
	s, ok := st.(*State)
	if !ok || s == nil {
		return nil
	}
	return s.publicView()
}

// PlayerView projects the state for a single seated player
func (g *Game) PlayerView(st game.State, playerID string) any {
	s, ok := st.(*State)
	if !ok || s == nil {
		return nil
	}

	pv := PlayerView{
		PublicView: s.publicView(),
		PlayerID:   playerID,
	}
	if cards, ok := s.HoleCards[playerID]; ok {
		pv.HoleCards = append([]deck.Card(nil), cards...)
	}
	if s.Betting != nil && !s.Betting.RoundClosed {
		actions := s.Betting.LegalActions(playerID)
		pv.AvailableActions = &actions
	}
	return pv
}

func (s *State) publicView() PublicView {
	v := PublicView{
		Phase:      s.Phase.String(),
		HandNumber: s.HandNumber,
		Board:      append([]deck.Card(nil), s.Board...),
		Seats:      make([]SeatView, len(s.Seats)),
		Pots:       clonePots(s.Pots),
		Log:        append([]string(nil), s.Log...),
	}
	for i, seat := range s.Seats {
		v.Seats[i] = SeatView{
			PlayerID:  seat.PlayerID,
			SeatIndex: seat.SeatIndex,
			Stack:     seat.Stack,
			Folded:    seat.Folded,
			AllIn:     seat.AllIn,
			InHand:    seat.InHand,
			IsDealer:  seat.IsDealer,
		}
	}
	if s.Betting != nil {
		v.ActivePlayerID = s.Betting.ActivePlayerID
		v.CurrentBet = s.Betting.CurrentBet
	}
	if s.Showdown != nil {
		// Revealed hole cards stay out of the shared projection; the
		// summary and categories already describe the result
		sd := *s.Showdown
		sd.Revealed = nil
		v.Showdown = &sd
	}
	return v
}
