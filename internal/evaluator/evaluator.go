// Package evaluator ranks poker hands of five to seven cards.
//
// A hand's strength is a Score, a small vector of ints compared
// lexicographically. The first element is the category, the rest break
// ties within it. Two hands tie exactly when their vectors are equal,
// so split pots fall out of Compare with no extra rules.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/lox/pokertable/internal/deck"
	"github.com/lox/pokertable/internal/game"
)

// Category is the class of a five-card poker hand
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns the wire token for the category, as it appears in
// showdown results
func (c Category) String() string {
	switch c {
	case HighCard:
		return "high_card"
	case Pair:
		return "pair"
	case TwoPair:
		return "two_pair"
	case ThreeOfAKind:
		return "three_of_a_kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full_house"
	case FourOfAKind:
		return "four_of_a_kind"
	case StraightFlush:
		return "straight_flush"
	default:
		return "unknown"
	}
}

// Label returns the category's display name
func (c Category) Label() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// Score orders hands lexicographically: index 0 is the category, the
// remaining elements are rank tiebreaks from most to least significant.
// A straight's single tiebreak is its high card, with the wheel
// (A-2-3-4-5) scored five high.
type Score []int

// Category returns the hand class encoded in the score
func (s Score) Category() Category {
	if len(s) == 0 {
		return HighCard
	}
	return Category(s[0])
}

// Compare returns 1 if s beats other, -1 if other beats s and 0 on a tie
func (s Score) Compare(other Score) int {
	for i := 0; i < len(s) && i < len(other); i++ {
		if s[i] != other[i] {
			if s[i] > other[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(s) > len(other):
		return 1
	case len(s) < len(other):
		return -1
	}
	return 0
}

// Evaluate scores the best five-card hand that can be made from five,
// six or seven cards. Any other count is invalid input.
func Evaluate(cards []deck.Card) (Score, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return nil, game.Errorf(game.KindInvalidInput, "evaluate requires 5 to 7 cards, got %d", len(cards))
	}
	best, _ := bestFive(cards)
	return best, nil
}

// BestFive returns the winning score along with the five cards that
// make it, for showdown reveals
func BestFive(cards []deck.Card) (Score, []deck.Card, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return nil, nil, game.Errorf(game.KindInvalidInput, "evaluate requires 5 to 7 cards, got %d", len(cards))
	}
	score, hand := bestFive(cards)
	return score, hand, nil
}

func bestFive(cards []deck.Card) (Score, []deck.Card) {
	if len(cards) == 5 {
		five := make([]deck.Card, 5)
		copy(five, cards)
		return scoreFive(five), five
	}

	var (
		best     Score
		bestHand []deck.Card
	)
	combinations(len(cards), func(chosen [5]int) {
		five := make([]deck.Card, 5)
		for i, c := range chosen {
			five[i] = cards[c]
		}
		s := scoreFive(five)
		if best == nil || s.Compare(best) > 0 {
			best = s
			bestHand = five
		}
	})
	return best, bestHand
}

// combinations calls fn with every 5-element subset of [0,n)
func combinations(n int, fn func([5]int)) {
	var c [5]int
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for d := b + 1; d < n-2; d++ {
				for e := d + 1; e < n-1; e++ {
					for f := e + 1; f < n; f++ {
						c[0], c[1], c[2], c[3], c[4] = a, b, d, e, f
						fn(c)
					}
				}
			}
		}
	}
}

// scoreFive ranks exactly five cards
func scoreFive(five []deck.Card) Score {
	ranks := make([]int, 5)
	for i, c := range five {
		ranks[i] = int(c.Rank)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	flush := true
	for _, c := range five[1:] {
		if c.Suit != five[0].Suit {
			flush = false
			break
		}
	}

	straightHigh, straight := straightHigh(ranks)

	if flush && straight {
		return Score{int(StraightFlush), straightHigh}
	}

	// Group ranks by multiplicity, then by rank, highest first
	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}
	type group struct{ rank, count int }
	groups := make([]group, 0, 5)
	for r, n := range counts {
		groups = append(groups, group{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 4:
		return Score{int(FourOfAKind), groups[0].rank, groups[1].rank}
	case groups[0].count == 3 && groups[1].count == 2:
		return Score{int(FullHouse), groups[0].rank, groups[1].rank}
	case flush:
		return append(Score{int(Flush)}, ranks...)
	case straight:
		return Score{int(Straight), straightHigh}
	case groups[0].count == 3:
		return Score{int(ThreeOfAKind), groups[0].rank, groups[1].rank, groups[2].rank}
	case groups[0].count == 2 && groups[1].count == 2:
		return Score{int(TwoPair), groups[0].rank, groups[1].rank, groups[2].rank}
	case groups[0].count == 2:
		return Score{int(Pair), groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank}
	default:
		return append(Score{int(HighCard)}, ranks...)
	}
}

// straightHigh reports whether the five ranks, sorted descending, form
// a straight and returns its high card. The wheel counts the ace low.
func straightHigh(sorted []int) (int, bool) {
	run := true
	for i := 1; i < 5; i++ {
		if sorted[i] != sorted[i-1]-1 {
			run = false
			break
		}
	}
	if run {
		return sorted[0], true
	}
	// A-5-4-3-2 with the ace scored low
	if sorted[0] == int(deck.Ace) &&
		sorted[1] == 5 && sorted[2] == 4 && sorted[3] == 3 && sorted[4] == 2 {
		return 5, true
	}
	return 0, false
}

// Describe renders a score as a short human-readable phrase
func Describe(s Score) string {
	if len(s) < 2 {
		return s.Category().Label()
	}
	switch s.Category() {
	case StraightFlush:
		if s[1] == int(deck.Ace) {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", rankName(s[1]))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %ss", rankName(s[1]))
	case FullHouse:
		return fmt.Sprintf("Full House, %ss over %ss", rankName(s[1]), rankName(s[2]))
	case Flush:
		return fmt.Sprintf("Flush, %s high", rankName(s[1]))
	case Straight:
		return fmt.Sprintf("Straight, %s high", rankName(s[1]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %ss", rankName(s[1]))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %ss and %ss", rankName(s[1]), rankName(s[2]))
	case Pair:
		return fmt.Sprintf("One Pair, %ss", rankName(s[1]))
	default:
		return fmt.Sprintf("High Card, %s", rankName(s[1]))
	}
}

func rankName(r int) string {
	switch deck.Rank(r) {
	case deck.Ace:
		return "Ace"
	case deck.King:
		return "King"
	case deck.Queen:
		return "Queen"
	case deck.Jack:
		return "Jack"
	case deck.Ten:
		return "Ten"
	case deck.Nine:
		return "Nine"
	case deck.Eight:
		return "Eight"
	case deck.Seven:
		return "Seven"
	case deck.Six:
		return "Six"
	case deck.Five:
		return "Five"
	case deck.Four:
		return "Four"
	case deck.Three:
		return "Three"
	case deck.Two:
		return "Two"
	default:
		return "?"
	}
}
