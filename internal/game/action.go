package game

// Action types recognized by modules. Meta-actions drive the phase
// machine; the lowercase types are betting actions forwarded to the
// wagering engine.
const (
	ActionStartHand    = "START_HAND"
	ActionAdvancePhase = "ADVANCE_PHASE"
	ActionFold         = "fold"
	ActionCheck        = "check"
	ActionCall         = "call"
	ActionBet          = "bet"
	ActionRaise        = "raise"
	ActionAllIn        = "all_in"
)

// Action is the uniform action envelope: a type tag plus an optional
// numeric payload whose shape the type decides.
type Action struct {
	Type    string   `json:"type"`
	Payload *Payload `json:"payload,omitempty"`
}

// Payload carries the numeric arguments of bet and raise actions
type Payload struct {
	Amount   int `json:"amount,omitempty"`
	ToAmount int `json:"toAmount,omitempty"`
}

// StartHand begins the next hand
func StartHand() Action {
	return Action{Type: ActionStartHand}
}

// AdvancePhase steps the phase machine when no betting action can
func AdvancePhase() Action {
	return Action{Type: ActionAdvancePhase}
}

// Fold gives up the hand
func Fold() Action {
	return Action{Type: ActionFold}
}

// Check passes when there is nothing to call
func Check() Action {
	return Action{Type: ActionCheck}
}

// Call matches the current bet
func Call() Action {
	return Action{Type: ActionCall}
}

// Bet opens the betting at amount
func Bet(amount int) Action {
	return Action{Type: ActionBet, Payload: &Payload{Amount: amount}}
}

// RaiseTo raises the current bet up to toAmount total
func RaiseTo(toAmount int) Action {
	return Action{Type: ActionRaise, Payload: &Payload{ToAmount: toAmount}}
}

// AllIn commits the player's entire remaining stack
func AllIn() Action {
	return Action{Type: ActionAllIn}
}
