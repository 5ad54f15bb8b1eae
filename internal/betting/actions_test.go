package betting

import (
	"strings"
	"testing"

	"github.com/lox/pokertable/internal/game"
)

func TestCheckFacingBetRejected(t *testing.T) {
	r := newPreflopRound(t, map[string]int{"a": 1000, "b": 1000, "c": 1000})

	err := r.Check("c")
	if err == nil {
		t.Fatal("check facing the big blind should fail")
	}
	if game.KindOf(err) != game.KindIllegalAction {
		t.Errorf("kind = %v, want IllegalAction", game.KindOf(err))
	}
	if !strings.Contains(err.Error(), "Cannot check") {
		t.Errorf("message %q should contain %q", err.Error(), "Cannot check")
	}

	// The failed check changes nothing
	if r.ActivePlayerID != "c" {
		t.Error("active player changed after rejected action")
	}
	if r.Players["c"].HasActed {
		t.Error("rejected action marked the player as acted")
	}
}

func TestBetLegality(t *testing.T) {
	seats := []Seat{
		{PlayerID: "a", Stack: 100},
		{PlayerID: "b", Stack: 100},
	}

	t.Run("below minimum rejected", func(t *testing.T) {
		r := NewRound("flop", seats, 10)
		err := r.Bet("a", 4)
		if game.KindOf(err) != game.KindIllegalAction {
			t.Errorf("kind = %v, want IllegalAction", game.KindOf(err))
		}
	})

	t.Run("zero or negative rejected", func(t *testing.T) {
		r := NewRound("flop", seats, 10)
		if err := r.Bet("a", 0); game.KindOf(err) != game.KindInvalidAmount {
			t.Errorf("bet 0 kind = %v, want InvalidAmount", game.KindOf(err))
		}
		if err := r.Bet("a", -5); game.KindOf(err) != game.KindInvalidAmount {
			t.Errorf("bet -5 kind = %v, want InvalidAmount", game.KindOf(err))
		}
	})

	t.Run("above stack rejected", func(t *testing.T) {
		r := NewRound("flop", seats, 10)
		if err := r.Bet("a", 101); game.KindOf(err) != game.KindIllegalAction {
			t.Errorf("kind = %v, want IllegalAction", game.KindOf(err))
		}
	})

	t.Run("bet when a bet exists rejected", func(t *testing.T) {
		r := NewRound("flop", seats, 10)
		mustAct(t, r.Bet("a", 20))
		if err := r.Bet("b", 50); game.KindOf(err) != game.KindIllegalAction {
			t.Errorf("kind = %v, want IllegalAction", game.KindOf(err))
		}
	})

	t.Run("short all-in bet allowed", func(t *testing.T) {
		r := NewRound("flop", []Seat{
			{PlayerID: "a", Stack: 6},
			{PlayerID: "b", Stack: 100},
		}, 10)
		if err := r.Bet("a", 6); err != nil {
			t.Fatalf("all-in under the minimum open should stand: %v", err)
		}
		if !r.Players["a"].AllIn {
			t.Error("a should be all-in")
		}
		if r.CurrentBet != 6 {
			t.Errorf("CurrentBet = %d, want 6", r.CurrentBet)
		}
	})
}

func TestRaiseLegality(t *testing.T) {
	t.Run("raise without a bet rejected", func(t *testing.T) {
		r := NewRound("flop", []Seat{
			{PlayerID: "a", Stack: 100},
			{PlayerID: "b", Stack: 100},
		}, 10)
		if err := r.RaiseTo("a", 30); game.KindOf(err) != game.KindIllegalAction {
			t.Errorf("kind = %v, want IllegalAction", game.KindOf(err))
		}
	})

	t.Run("raise not beyond current bet rejected", func(t *testing.T) {
		r := newPreflopRound(t, map[string]int{"a": 1000, "b": 1000, "c": 1000})
		if err := r.RaiseTo("c", 10); game.KindOf(err) != game.KindIllegalAction {
			t.Errorf("kind = %v, want IllegalAction", game.KindOf(err))
		}
	})

	t.Run("under minimum increment rejected", func(t *testing.T) {
		r := newPreflopRound(t, map[string]int{"a": 1000, "b": 1000, "c": 1000})
		if err := r.RaiseTo("c", 15); game.KindOf(err) != game.KindIllegalAction {
			t.Errorf("kind = %v, want IllegalAction", game.KindOf(err))
		}
	})

	t.Run("beyond stack rejected", func(t *testing.T) {
		r := newPreflopRound(t, map[string]int{"a": 1000, "b": 1000, "c": 40})
		if err := r.RaiseTo("c", 50); game.KindOf(err) != game.KindIllegalAction {
			t.Errorf("kind = %v, want IllegalAction", game.KindOf(err))
		}
	})
}

// A short all-in raise does not reopen the action: seats that already acted
// may call or fold but not raise again.
func TestUnderMinAllInDoesNotReopen(t *testing.T) {
	seats := []Seat{
		{PlayerID: "a", Stack: 1000},
		{PlayerID: "b", Stack: 1000},
		{PlayerID: "c", Stack: 1000},
		{PlayerID: "d", Stack: 25},
	}
	r := NewRound("preflop", seats, 20,
		WithForcedBet("a", 10),
		WithForcedBet("b", 20),
		WithFirstToAct("c"),
	)

	mustAct(t, r.Call("c"))

	// d shoves for 25, only 5 over the bet of 20
	if err := r.AllIn("d"); err != nil {
		t.Fatalf("d all-in: %v", err)
	}
	if r.CurrentBet != 25 {
		t.Fatalf("CurrentBet = %d, want 25", r.CurrentBet)
	}
	if r.MinRaiseIncrement != 20 {
		t.Errorf("short all-in must not change MinRaiseIncrement, got %d", r.MinRaiseIncrement)
	}

	// a posted the small blind but never acted, so a may still raise
	if r.ActivePlayerID != "a" {
		t.Fatalf("active = %s, want a", r.ActivePlayerID)
	}
	mustAct(t, r.Call("a"))

	// The big blind never acted either
	if r.ActivePlayerID != "b" {
		t.Fatalf("active = %s, want b", r.ActivePlayerID)
	}
	mustAct(t, r.Call("b"))

	// c already called: the short all-in did not restore c's right to raise
	if r.ActivePlayerID != "c" {
		t.Fatalf("active = %s, want c", r.ActivePlayerID)
	}
	err := r.RaiseTo("c", 60)
	if game.KindOf(err) != game.KindIllegalAction {
		t.Fatalf("raise after short all-in kind = %v, want IllegalAction", game.KindOf(err))
	}
	if !strings.Contains(err.Error(), "reopened") {
		t.Errorf("message %q should mention the action not being reopened", err.Error())
	}

	la := r.LegalActions("c")
	if la.CanRaise {
		t.Error("legal actions should not offer a raise to c")
	}
	if la.CanAllIn {
		t.Error("an all-in here would be an illegal raise, CanAllIn should be false")
	}
	if !la.CanCall || la.CallAmount != 5 {
		t.Errorf("c should be offered a call of 5, got canCall=%v callAmount=%d", la.CanCall, la.CallAmount)
	}

	mustAct(t, r.Call("c"))
	if !r.RoundClosed {
		t.Error("round should close once the short all-in is matched")
	}
	checkConservation(t, r, 3025)
}

func TestFullRaiseRestoresRaisingRights(t *testing.T) {
	seats := []Seat{
		{PlayerID: "a", Stack: 1000},
		{PlayerID: "b", Stack: 1000},
		{PlayerID: "c", Stack: 1000},
	}
	r := NewRound("preflop", seats, 20,
		WithForcedBet("a", 10),
		WithForcedBet("b", 20),
		WithFirstToAct("c"),
	)

	mustAct(t, r.Call("c"))
	mustAct(t, r.RaiseTo("a", 60))

	// a's raise of 40 is a full raise, c may now re-raise
	mustAct(t, r.Call("b"))
	if err := r.RaiseTo("c", 140); err != nil {
		t.Fatalf("c re-raise after full raise: %v", err)
	}
	if r.MinRaiseIncrement != 80 {
		t.Errorf("MinRaiseIncrement = %d, want 80", r.MinRaiseIncrement)
	}
}

func TestAllInDispatch(t *testing.T) {
	t.Run("opens as a bet", func(t *testing.T) {
		r := NewRound("flop", []Seat{
			{PlayerID: "a", Stack: 80},
			{PlayerID: "b", Stack: 100},
		}, 10)
		mustAct(t, r.AllIn("a"))
		if r.CurrentBet != 80 {
			t.Errorf("CurrentBet = %d, want 80", r.CurrentBet)
		}
		if r.MinRaiseIncrement != 80 {
			t.Errorf("MinRaiseIncrement = %d, want 80", r.MinRaiseIncrement)
		}
	})

	t.Run("matches as a call", func(t *testing.T) {
		r := NewRound("flop", []Seat{
			{PlayerID: "a", Stack: 100},
			{PlayerID: "b", Stack: 40},
		}, 10)
		mustAct(t, r.Bet("a", 60), r.AllIn("b"))
		pb := r.Players["b"]
		if !pb.AllIn || pb.RoundContribution != 40 {
			t.Errorf("b should be all-in for 40, got allIn=%v contribution=%d", pb.AllIn, pb.RoundContribution)
		}
		// 40 does not cover the 60, CurrentBet stays
		if r.CurrentBet != 60 {
			t.Errorf("CurrentBet = %d, want 60", r.CurrentBet)
		}
	})

	t.Run("covers as a raise", func(t *testing.T) {
		r := NewRound("flop", []Seat{
			{PlayerID: "a", Stack: 100},
			{PlayerID: "b", Stack: 200},
		}, 10)
		mustAct(t, r.Bet("a", 30), r.AllIn("b"))
		if r.CurrentBet != 200 {
			t.Errorf("CurrentBet = %d, want 200", r.CurrentBet)
		}
		if r.MinRaiseIncrement != 170 {
			t.Errorf("MinRaiseIncrement = %d, want 170", r.MinRaiseIncrement)
		}
		if r.ActivePlayerID != "a" {
			t.Errorf("active = %s, want a", r.ActivePlayerID)
		}
	})
}

func TestLegalActionsFacingBet(t *testing.T) {
	r := newPreflopRound(t, map[string]int{"a": 1000, "b": 1000, "c": 1000})

	la := r.LegalActions("c")
	if !la.CanFold || !la.CanCall || !la.CanRaise || !la.CanAllIn {
		t.Errorf("c should be able to fold, call, raise and shove: %+v", la)
	}
	if la.CanCheck || la.CanBet {
		t.Errorf("c cannot check or bet facing the blind: %+v", la)
	}
	if la.CallAmount != 10 {
		t.Errorf("CallAmount = %d, want 10", la.CallAmount)
	}
	if la.MinRaiseTo != 20 {
		t.Errorf("MinRaiseTo = %d, want 20", la.MinRaiseTo)
	}
}

func TestLegalActionsBigBlindOption(t *testing.T) {
	r := newPreflopRound(t, map[string]int{"a": 1000, "b": 1000, "c": 1000})
	mustAct(t, r.Call("c"), r.Call("a"))

	la := r.LegalActions("b")
	if !la.CanCheck {
		t.Error("big blind should have the option to check")
	}
	if la.CanCall {
		t.Error("nothing to call, CanCall should be false")
	}
	if !la.CanRaise || la.MinRaiseTo != 20 {
		t.Errorf("big blind should be offered a raise to 20: %+v", la)
	}
}

func TestLegalActionsWithoutBet(t *testing.T) {
	r := NewRound("flop", []Seat{
		{PlayerID: "a", Stack: 100},
		{PlayerID: "b", Stack: 100},
	}, 10)

	la := r.LegalActions("a")
	if !la.CanCheck || !la.CanBet {
		t.Errorf("a should be able to check or bet: %+v", la)
	}
	if la.CanCall || la.CanRaise {
		t.Errorf("no bet to call or raise: %+v", la)
	}
	if la.MinBet != 10 {
		t.Errorf("MinBet = %d, want 10", la.MinBet)
	}
}

func TestLegalActionsCappedAtStack(t *testing.T) {
	r := NewRound("flop", []Seat{
		{PlayerID: "a", Stack: 7},
		{PlayerID: "b", Stack: 100},
	}, 10)

	la := r.LegalActions("a")
	if la.MinBet != 7 {
		t.Errorf("MinBet = %d, want the full stack of 7", la.MinBet)
	}

	mustAct(t, r.Bet("a", 7))
	lb := r.LegalActions("b")
	if !lb.CanRaise {
		t.Fatalf("b should be able to raise over the short open: %+v", lb)
	}
	// The short open was not a full bet so the increment is still 10
	if lb.MinRaiseTo != 17 {
		t.Errorf("MinRaiseTo = %d, want 17", lb.MinRaiseTo)
	}
}

func TestLegalActionsForInactivePlayer(t *testing.T) {
	r := newPreflopRound(t, map[string]int{"a": 1000, "b": 1000, "c": 1000})

	if la := r.LegalActions("a"); la != (Actions{}) {
		t.Errorf("out-of-turn legal actions should be empty, got %+v", la)
	}
	if la := r.LegalActions("nobody"); la != (Actions{}) {
		t.Errorf("unknown player legal actions should be empty, got %+v", la)
	}
}

func TestFoldedPlayerCannotAct(t *testing.T) {
	r := newPreflopRound(t, map[string]int{"a": 1000, "b": 1000, "c": 1000})
	mustAct(t, r.Fold("c"), r.Call("a"))

	// b closes the round; then verify c never becomes active again
	mustAct(t, r.Check("b"))
	if !r.RoundClosed {
		t.Fatal("round should be closed")
	}
	if r.Players["c"].RoundContribution != 0 {
		t.Error("folded player should have contributed nothing")
	}
}
