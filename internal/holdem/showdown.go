package holdem

import (
	"fmt"
	"strings"

	"github.com/lox/pokertable/internal/betting"
	"github.com/lox/pokertable/internal/deck"
	"github.com/lox/pokertable/internal/evaluator"
)

// runShowdown awards every pot layer and ends the hand. A hand that is
// down to one seat is won uncontested with no cards revealed.
func (g *Game) runShowdown(s *State) {
	s.Phase = PhaseShowdown
	s.rebuildHandPots()
	live := s.liveSeats()

	sd := &ShowdownResult{PotAwards: make([]PotAward, 0, len(s.Pots))}

	if len(live) <= 1 {
		g.awardUncontested(s, sd, live)
	} else {
		g.awardContested(s, sd, live)
	}

	// The awarded chips live in the stacks now; PotAwards keeps the
	// layer breakdown for display
	s.Pots = nil
	for id := range s.Contributions {
		s.Contributions[id] = 0
	}

	s.Showdown = sd
	s.Betting = nil
	s.RoundBase = nil
	s.Phase = PhaseHandEnd
}

func (g *Game) awardUncontested(s *State, sd *ShowdownResult, live []*SeatState) {
	if len(live) == 0 {
		return
	}
	winner := live[0]
	total := 0
	for _, pot := range s.Pots {
		total += pot.Amount
	}
	winner.Stack += total

	sd.Uncontested = true
	sd.Winners = []string{winner.PlayerID}
	sd.PotAwards = append(sd.PotAwards, PotAward{
		Amount:  total,
		Winners: []string{winner.PlayerID},
		Shares:  map[string]int{winner.PlayerID: total},
	})
	sd.Summary = fmt.Sprintf("%s wins %d uncontested", winner.PlayerID, total)
	s.logf("%s", sd.Summary)
}

func (g *Game) awardContested(s *State, sd *ShowdownResult, live []*SeatState) {
	scores := make(map[string]evaluator.Score, len(live))
	sd.Categories = make(map[string]string, len(live))
	sd.Scores = scores
	sd.Revealed = make(map[string][]deck.Card, len(live))

	for _, seat := range live {
		cards := append(append([]deck.Card(nil), s.HoleCards[seat.PlayerID]...), s.Board...)
		score, err := evaluator.Evaluate(cards)
		if err != nil {
			continue
		}
		scores[seat.PlayerID] = score
		sd.Categories[seat.PlayerID] = score.Category().String()
		sd.Revealed[seat.PlayerID] = append([]deck.Card(nil), s.HoleCards[seat.PlayerID]...)
	}

	s.logf("showdown: board %s", deck.Codes(s.Board))

	totalByWinner := make(map[string]int)
	for _, pot := range s.Pots {
		award := awardPot(s, pot, scores)
		sd.PotAwards = append(sd.PotAwards, award)
		for id, share := range award.Shares {
			totalByWinner[id] += share
		}
	}

	var lines []string
	for _, seat := range s.Seats {
		won, ok := totalByWinner[seat.PlayerID]
		if !ok {
			continue
		}
		sd.Winners = append(sd.Winners, seat.PlayerID)
		if sc, scored := scores[seat.PlayerID]; scored {
			lines = append(lines, fmt.Sprintf("%s wins %d with %s", seat.PlayerID, won, evaluator.Describe(sc)))
		} else {
			lines = append(lines, fmt.Sprintf("%s wins %d", seat.PlayerID, won))
		}
	}
	sd.Summary = strings.Join(lines, "; ")
	s.logf("%s", sd.Summary)
}

// awardPot splits one layer between the best live hands eligible for
// it. Remainder chips go one each to winners in seat order, lowest
// seat first.
func awardPot(s *State, pot betting.Pot, scores map[string]evaluator.Score) PotAward {
	contenders := make([]*SeatState, 0, len(pot.Eligible))
	for _, id := range pot.Eligible {
		seat := s.seat(id)
		if seat == nil || seat.Folded || !seat.InHand {
			continue
		}
		contenders = append(contenders, seat)
	}
	if len(contenders) == 0 {
		// Every eligible seat folded; the layer is forfeited to the
		// live seats rather than vanishing
		contenders = s.liveSeats()
	}

	var best evaluator.Score
	for _, seat := range contenders {
		if sc := scores[seat.PlayerID]; best == nil || sc.Compare(best) > 0 {
			best = sc
		}
	}
	winners := make([]*SeatState, 0, len(contenders))
	for _, seat := range contenders {
		if scores[seat.PlayerID].Compare(best) == 0 {
			winners = append(winners, seat)
		}
	}

	k := len(winners)
	share := pot.Amount / k
	remainder := pot.Amount % k
	award := PotAward{
		Amount:  pot.Amount,
		Winners: make([]string, 0, k),
		Shares:  make(map[string]int, k),
	}
	for i, seat := range winners {
		amt := share
		if i < remainder {
			amt++
		}
		seat.Stack += amt
		award.Winners = append(award.Winners, seat.PlayerID)
		award.Shares[seat.PlayerID] = amt
	}
	return award
}
