package betting

import "github.com/lox/pokertable/internal/game"

// Actions describes what the given seat may legally do right now,
// with the numeric bounds a client needs to build a raise slider.
type Actions struct {
	CanFold    bool `json:"canFold"`
	CanCheck   bool `json:"canCheck"`
	CanCall    bool `json:"canCall"`
	CanBet     bool `json:"canBet"`
	CanRaise   bool `json:"canRaise"`
	CanAllIn   bool `json:"canAllIn"`
	CallAmount int  `json:"callAmount"`
	MinBet     int  `json:"minBet"`
	MinRaiseTo int  `json:"minRaiseTo"`
}

// Fold gives up the seat's claim on every pot
func (r *Round) Fold(playerID string) error {
	p, err := r.ensureActive(playerID)
	if err != nil {
		return err
	}

	p.Folded = true
	p.HasActed = true
	r.logf("%s folds", playerID)
	r.advanceFrom(playerID)
	r.rebuildPots()
	return nil
}

// Check passes the action. Only legal when the seat has nothing to call.
func (r *Round) Check(playerID string) error {
	p, err := r.ensureActive(playerID)
	if err != nil {
		return err
	}

	if call := r.CurrentBet - p.RoundContribution; call > 0 {
		return game.Errorf(game.KindIllegalAction, "Cannot check when facing a bet of %d", call)
	}

	p.HasActed = true
	r.logf("%s checks", playerID)
	r.advanceFrom(playerID)
	r.rebuildPots()
	return nil
}

// Call matches the current bet, going all-in when the stack is shorter
// than the amount owed.
func (r *Round) Call(playerID string) error {
	p, err := r.ensureActive(playerID)
	if err != nil {
		return err
	}

	call := r.CurrentBet - p.RoundContribution
	if call <= 0 {
		return game.Errorf(game.KindIllegalAction, "Cannot call when there is no bet, check instead")
	}

	paid := minInt(call, p.Stack)
	p.Stack -= paid
	p.RoundContribution += paid
	p.TotalContribution += paid
	p.HasActed = true
	if p.Stack == 0 {
		p.AllIn = true
		r.logf("%s calls %d and is all-in", playerID, paid)
	} else {
		r.logf("%s calls %d", playerID, paid)
	}
	r.advanceFrom(playerID)
	r.rebuildPots()
	return nil
}

// Bet opens the betting. The amount must reach the table minimum
// unless it is the seat's whole stack.
func (r *Round) Bet(playerID string, amount int) error {
	p, err := r.ensureActive(playerID)
	if err != nil {
		return err
	}

	if r.CurrentBet != 0 {
		return game.Errorf(game.KindIllegalAction, "Cannot bet when a bet of %d exists, raise instead", r.CurrentBet)
	}
	if amount <= 0 {
		return game.Errorf(game.KindInvalidAmount, "bet amount must be positive, got %d", amount)
	}
	if amount > p.Stack {
		return game.Errorf(game.KindIllegalAction, "cannot bet %d with only %d behind", amount, p.Stack)
	}
	floor := maxInt(r.MinOpenBet, r.MinRaiseIncrement)
	if amount < floor && amount != p.Stack {
		return game.Errorf(game.KindIllegalAction, "bet of %d is below the minimum of %d", amount, floor)
	}

	full := amount >= floor
	p.Stack -= amount
	p.RoundContribution += amount
	p.TotalContribution += amount
	r.CurrentBet = amount
	if amount >= r.MinRaiseIncrement {
		r.MinRaiseIncrement = amount
	}
	if p.Stack == 0 {
		p.AllIn = true
		r.logf("%s bets %d and is all-in", playerID, amount)
	} else {
		r.logf("%s bets %d", playerID, amount)
	}

	if full {
		r.reopen(playerID)
	} else {
		p.HasActed = true
	}
	r.advanceFrom(playerID)
	r.rebuildPots()
	return nil
}

// RaiseTo raises the current bet to toAmount total for the round.
// A raise below the minimum increment is only legal as an all-in, and
// such an all-in does not reopen the action for seats that already
// matched the previous bet.
func (r *Round) RaiseTo(playerID string, toAmount int) error {
	p, err := r.ensureActive(playerID)
	if err != nil {
		return err
	}

	if r.CurrentBet == 0 {
		return game.Errorf(game.KindIllegalAction, "cannot raise when there is no bet, bet instead")
	}
	if toAmount <= r.CurrentBet {
		return game.Errorf(game.KindIllegalAction, "raise to %d must exceed the current bet of %d", toAmount, r.CurrentBet)
	}
	if p.HasActed {
		return game.Errorf(game.KindIllegalAction, "cannot raise, the action has not been reopened")
	}
	additional := toAmount - p.RoundContribution
	if additional > p.Stack {
		return game.Errorf(game.KindIllegalAction, "raise to %d requires %d more chips with only %d behind", toAmount, additional, p.Stack)
	}

	increment := toAmount - r.CurrentBet
	allIn := additional == p.Stack
	if !allIn && increment < r.MinRaiseIncrement {
		return game.Errorf(game.KindIllegalAction, "raise increment %d is below the minimum of %d", increment, r.MinRaiseIncrement)
	}

	full := increment >= r.MinRaiseIncrement
	p.Stack -= additional
	p.RoundContribution += additional
	p.TotalContribution += additional
	r.CurrentBet = toAmount
	if p.Stack == 0 {
		p.AllIn = true
		r.logf("%s raises all-in to %d", playerID, toAmount)
	} else {
		r.logf("%s raises to %d", playerID, toAmount)
	}

	if full {
		r.MinRaiseIncrement = increment
		r.reopen(playerID)
	} else {
		p.HasActed = true
	}
	r.advanceFrom(playerID)
	r.rebuildPots()
	return nil
}

// AllIn commits the seat's whole stack: an opening bet when nothing has
// been bet, a call when the stack cannot cover the current bet, and a
// raise otherwise.
func (r *Round) AllIn(playerID string) error {
	p, err := r.ensureActive(playerID)
	if err != nil {
		return err
	}

	switch {
	case r.CurrentBet == 0:
		return r.Bet(playerID, p.Stack)
	case p.RoundContribution+p.Stack <= r.CurrentBet:
		return r.Call(playerID)
	default:
		return r.RaiseTo(playerID, p.RoundContribution+p.Stack)
	}
}

// reopen restores the right to act for every other seat that can still
// act after a full bet or raise by actor. Seats that cannot act are
// marked acted so they never gate round closure.
func (r *Round) reopen(actor string) {
	for id, p := range r.Players {
		if id == actor {
			p.HasActed = true
			continue
		}
		if p.Folded || p.AllIn || p.Stack <= 0 {
			p.HasActed = true
			continue
		}
		p.HasActed = false
	}
}

// LegalActions computes what playerID may do. A seat that is not the
// active player gets the zero value: nothing is legal.
func (r *Round) LegalActions(playerID string) Actions {
	var a Actions
	if r.RoundClosed || playerID != r.ActivePlayerID {
		return a
	}
	p, ok := r.Players[playerID]
	if !ok {
		return a
	}

	call := r.CurrentBet - p.RoundContribution
	a.CanFold = true
	a.CallAmount = call
	a.CanCheck = call == 0
	a.CanCall = call > 0

	if r.CurrentBet == 0 && p.Stack > 0 {
		a.CanBet = true
		a.MinBet = minInt(maxInt(r.MinOpenBet, r.MinRaiseIncrement), p.Stack)
	}
	if r.CurrentBet > 0 && !p.HasActed && p.Stack > call {
		a.CanRaise = true
		a.MinRaiseTo = minInt(r.CurrentBet+r.MinRaiseIncrement, p.RoundContribution+p.Stack)
	}
	if p.Stack > 0 {
		a.CanAllIn = r.CurrentBet == 0 ||
			p.RoundContribution+p.Stack <= r.CurrentBet ||
			!p.HasActed
	}
	return a
}
