package evaluator

import (
	"testing"

	"github.com/chehsunliu/poker"

	"github.com/lox/pokertable/internal/deck"
)

func toReference(cards []deck.Card) []poker.Card {
	out := make([]poker.Card, len(cards))
	for i, c := range cards {
		out[i] = poker.NewCard(c.Code())
	}
	return out
}

// referenceClass maps a Category onto chehsunliu/poker's rank classes,
// where 1 is a straight flush and 9 a high card.
func referenceClass(c Category) int32 {
	return int32(9 - int(c))
}

// TestEvaluateMatchesReferenceLibrary deals random seven-card hands and
// checks category and relative ordering against chehsunliu/poker.
func TestEvaluateMatchesReferenceLibrary(t *testing.T) {
	rng := deck.NewLCG(99)

	for i := 0; i < 400; i++ {
		d := deck.New()
		d.Shuffle(rng)
		h1 := d.DealN(7)
		h2 := d.DealN(7)

		s1, err := Evaluate(h1)
		if err != nil {
			t.Fatalf("evaluate h1: %v", err)
		}
		s2, err := Evaluate(h2)
		if err != nil {
			t.Fatalf("evaluate h2: %v", err)
		}

		r1 := poker.Evaluate(toReference(h1))
		r2 := poker.Evaluate(toReference(h2))

		if got, want := referenceClass(s1.Category()), poker.RankClass(r1); got != want {
			t.Fatalf("hand %v scored %v (class %d), reference says %s (class %d)",
				h1, s1, got, poker.RankString(r1), want)
		}
		if got, want := referenceClass(s2.Category()), poker.RankClass(r2); got != want {
			t.Fatalf("hand %v scored %v (class %d), reference says %s (class %d)",
				h2, s2, got, poker.RankString(r2), want)
		}

		// Lower reference ranks are better, ours compare lexicographically
		wantCmp := 0
		switch {
		case r1 < r2:
			wantCmp = 1
		case r1 > r2:
			wantCmp = -1
		}
		if got := s1.Compare(s2); got != wantCmp {
			t.Fatalf("ordering disagrees with reference for\n  %v (%v, rank %d)\n  %v (%v, rank %d)\n  got %d want %d",
				h1, s1, r1, h2, s2, r2, got, wantCmp)
		}
	}
}
