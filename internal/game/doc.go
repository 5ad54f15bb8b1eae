// Package game defines the contract between the table mediator and a
// game implementation.
//
// A Module owns the rules of one game. The mediator holds an opaque
// State, feeds player actions through ApplyAction, and publishes the
// views the module projects. All module operations are pure: a failed
// action returns an error and leaves the given state untouched, and the
// same action sequence on the same initial state always produces the
// same states.
//
// Failures carry an ErrorKind so transports can surface a stable code
// alongside the human-readable message:
//
//	next, err := mod.ApplyAction(st, "p1", game.Check())
//	if err != nil {
//	    code := game.KindOf(err) // e.g. KindIllegalAction
//	}
package game
