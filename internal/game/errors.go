package game

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a game failure. Kinds are stable identifiers
// suitable for wire protocols; messages are free-form.
type ErrorKind int

const (
	// KindInternal marks errors that did not originate from game rules
	KindInternal ErrorKind = iota
	KindNotSeated
	KindNotYourTurn
	KindInvalidAmount
	KindIllegalAction
	KindInsufficientPlayers
	KindWrongPhase
	KindRoundClosed
	KindUnknownAction
	KindInvalidInput
	KindBusy
)

// String returns the wire name of the kind
func (k ErrorKind) String() string {
	names := [...]string{
		"Internal",
		"NotSeated",
		"NotYourTurn",
		"InvalidAmount",
		"IllegalAction",
		"InsufficientPlayers",
		"WrongPhase",
		"RoundClosed",
		"UnknownAction",
		"InvalidInput",
		"Busy",
	}
	if k < 0 || int(k) >= len(names) {
		return "Internal"
	}
	return names[k]
}

// Error is a game failure tagged with a kind. Applying an action that
// returns an Error never mutates state.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error returns the human-readable message
func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a kinded error with a formatted message
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err. Errors that are not game
// errors report KindInternal.
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}
