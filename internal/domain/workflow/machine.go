package workflow

import "context"

// StateMachine tracks a document's current state and validates triggers
// against the configured transition table.
type StateMachine interface {
	// State returns the current state.
	State() State

	// CanFire returns true if the trigger has at least one configured
	// transition from the current state. Guards are not evaluated.
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the target state of the first
	// transition whose guard passes. Returns ErrInvalidTransition when the
	// trigger is not configured for the current state and ErrGuardFailed
	// when every candidate guard rejects.
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers configured for the current state.
	PermittedTriggers() []Trigger
}
