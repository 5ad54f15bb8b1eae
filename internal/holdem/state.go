package holdem

import (
	"encoding/json"
	"fmt"

	"github.com/lox/pokertable/internal/betting"
	"github.com/lox/pokertable/internal/deck"
	"github.com/lox/pokertable/internal/evaluator"
)

// Phase is where a table is in the life of a hand
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseHandStart
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseHandEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseHandStart:
		return "hand_start"
	case PhasePreflop:
		return "preflop"
	case PhaseFlop:
		return "flop"
	case PhaseTurn:
		return "turn"
	case PhaseRiver:
		return "river"
	case PhaseShowdown:
		return "showdown"
	case PhaseHandEnd:
		return "hand_end"
	default:
		return "unknown"
	}
}

// MarshalJSON writes the phase token
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON reads a phase token
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for ph := PhaseLobby; ph <= PhaseHandEnd; ph++ {
		if ph.String() == s {
			*p = ph
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}

// hasBetting reports whether the phase carries a betting round
func (p Phase) hasBetting() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// SeatState is one chair at the table
type SeatState struct {
	PlayerID  string `json:"playerId"`
	SeatIndex int    `json:"seatIndex"`
	Stack     int    `json:"stack"`
	Folded    bool   `json:"folded"`
	AllIn     bool   `json:"allIn"`
	InHand    bool   `json:"inHand"`
	IsDealer  bool   `json:"isDealer"`
}

// PotAward records how one pot layer was split at showdown
type PotAward struct {
	Amount  int            `json:"amount"`
	Winners []string       `json:"winners"`
	Shares  map[string]int `json:"shares"`
}

// ShowdownResult captures the outcome of a finished hand
type ShowdownResult struct {
	Winners     []string                   `json:"winners"`
	PotAwards   []PotAward                 `json:"potAwards"`
	Categories  map[string]string          `json:"categories,omitempty"`
	Scores      map[string]evaluator.Score `json:"scores,omitempty"`
	Revealed    map[string][]deck.Card     `json:"revealed,omitempty"`
	Uncontested bool                       `json:"uncontested,omitempty"`
	Summary     string                     `json:"summary"`
}

// State is the full authoritative table state. It serializes to a tree
// of scalars, sequences and mappings so snapshots round-trip as JSON.
type State struct {
	Phase         Phase                  `json:"phase"`
	Seed          int64                  `json:"seed"`
	HandNumber    int                    `json:"handNumber"`
	Seats         []*SeatState           `json:"seats"`
	DealerSeat    int                    `json:"dealerSeat"`
	SmallBlind    int                    `json:"smallBlind"`
	BigBlind      int                    `json:"bigBlind"`
	Deck          []deck.Card            `json:"deck,omitempty"`
	Board         []deck.Card            `json:"board"`
	HoleCards     map[string][]deck.Card `json:"holeCards,omitempty"`
	Betting       *betting.Round         `json:"betting,omitempty"`
	Pots          []betting.Pot          `json:"pots"`
	Contributions map[string]int         `json:"contributions"`
	RoundBase     map[string]int         `json:"roundBase,omitempty"`
	Log           []string               `json:"log"`
	Showdown      *ShowdownResult        `json:"showdown,omitempty"`
	PresetDeck    bool                   `json:"presetDeck,omitempty"`
}

// seat returns the seat occupied by playerID, or nil
func (s *State) seat(playerID string) *SeatState {
	for _, st := range s.Seats {
		if st.PlayerID == playerID {
			return st
		}
	}
	return nil
}

// inHandSeats returns the seats dealt into the current hand, by index
func (s *State) inHandSeats() []*SeatState {
	out := make([]*SeatState, 0, len(s.Seats))
	for _, st := range s.Seats {
		if st.InHand {
			out = append(out, st)
		}
	}
	return out
}

// liveSeats returns in-hand seats that have not folded, by index
func (s *State) liveSeats() []*SeatState {
	out := make([]*SeatState, 0, len(s.Seats))
	for _, st := range s.Seats {
		if st.InHand && !st.Folded {
			out = append(out, st)
		}
	}
	return out
}

// nextInHand returns the first in-hand seat strictly after index from,
// wrapping around the table
func (s *State) nextInHand(from int) *SeatState {
	n := len(s.Seats)
	for i := 1; i <= n; i++ {
		st := s.Seats[(from+i)%n]
		if st.InHand {
			return st
		}
	}
	return nil
}

func (s *State) logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// clone deep-copies the state so a failed action never leaves a
// half-mutated table behind
func (s *State) clone() *State {
	c := *s

	c.Seats = make([]*SeatState, len(s.Seats))
	for i, st := range s.Seats {
		seat := *st
		c.Seats[i] = &seat
	}

	c.Deck = append([]deck.Card(nil), s.Deck...)
	c.Board = append([]deck.Card(nil), s.Board...)

	if s.HoleCards != nil {
		c.HoleCards = make(map[string][]deck.Card, len(s.HoleCards))
		for id, cards := range s.HoleCards {
			c.HoleCards[id] = append([]deck.Card(nil), cards...)
		}
	}

	if s.Betting != nil {
		c.Betting = s.Betting.Clone()
	}

	c.Pots = clonePots(s.Pots)
	c.Contributions = cloneIntMap(s.Contributions)
	c.RoundBase = cloneIntMap(s.RoundBase)
	c.Log = append([]string(nil), s.Log...)

	if s.Showdown != nil {
		sd := *s.Showdown
		sd.Winners = append([]string(nil), s.Showdown.Winners...)
		sd.PotAwards = make([]PotAward, len(s.Showdown.PotAwards))
		for i, pa := range s.Showdown.PotAwards {
			cp := pa
			cp.Winners = append([]string(nil), pa.Winners...)
			cp.Shares = cloneIntMap(pa.Shares)
			sd.PotAwards[i] = cp
		}
		if s.Showdown.Categories != nil {
			sd.Categories = make(map[string]string, len(s.Showdown.Categories))
			for id, cat := range s.Showdown.Categories {
				sd.Categories[id] = cat
			}
		}
		if s.Showdown.Scores != nil {
			sd.Scores = make(map[string]evaluator.Score, len(s.Showdown.Scores))
			for id, sc := range s.Showdown.Scores {
				sd.Scores[id] = append(evaluator.Score(nil), sc...)
			}
		}
		if s.Showdown.Revealed != nil {
			sd.Revealed = make(map[string][]deck.Card, len(s.Showdown.Revealed))
			for id, cards := range s.Showdown.Revealed {
				sd.Revealed[id] = append([]deck.Card(nil), cards...)
			}
		}
		c.Showdown = &sd
	}

	return &c
}

func clonePots(pots []betting.Pot) []betting.Pot {
	if pots == nil {
		return nil
	}
	out := make([]betting.Pot, len(pots))
	for i, p := range pots {
		cp := p
		cp.Eligible = append([]string(nil), p.Eligible...)
		out[i] = cp
	}
	return out
}

func cloneIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
