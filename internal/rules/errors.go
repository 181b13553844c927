package rules

import "fmt"

// InvalidTransitionError is returned when a box or WHT state change is attempted
// out of the allowed order, or re-enters a terminal state. It names both the
// current and the attempted state so callers can surface a precise message.
type InvalidTransitionError struct {
	Entity    string // "box" or "wht_tracking"
	From      string
	Attempted string // target state or action name
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: cannot go from %s to %s", e.Entity, e.From, e.Attempted)
}

// NewInvalidTransition builds an InvalidTransitionError for the given entity.
func NewInvalidTransition(entity, from, attempted string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, Attempted: attempted}
}
