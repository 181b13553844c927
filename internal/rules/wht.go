package rules

import "github.com/LOSTXKER/anajakdoc-sub000/internal/model"

// whtForward maps each direction to its ordered forward chain. CANCELLED is
// reachable from any non-terminal state and handled separately.
var whtForward = map[string][]string{
	model.WhtTypeOutgoing: {model.WhtStatusPending, model.WhtStatusIssued, model.WhtStatusSent, model.WhtStatusConfirmed},
	model.WhtTypeIncoming: {model.WhtStatusPending, model.WhtStatusReceived},
}

// IsWhtTerminal reports whether a WHT status admits no further transitions.
func IsWhtTerminal(typ, status string) bool {
	if status == model.WhtStatusCancelled {
		return true
	}
	chain, ok := whtForward[typ]
	if !ok {
		return false
	}
	return status == chain[len(chain)-1]
}

// NextWhtStatuses lists the valid next states for a tracking record, so a UI
// only ever offers the legal moves.
func NextWhtStatuses(typ, current string) []string {
	if IsWhtTerminal(typ, current) {
		return nil
	}
	chain, ok := whtForward[typ]
	if !ok {
		return nil
	}
	for i, s := range chain {
		if s == current {
			return []string{chain[i+1], model.WhtStatusCancelled}
		}
	}
	return nil
}

// ValidateWhtTransition rejects any attempt to set a state out of order, skip a
// state, or re-enter a terminal state. Transitions are strictly monotonic.
func ValidateWhtTransition(typ, current, target string) error {
	for _, next := range NextWhtStatuses(typ, current) {
		if next == target {
			return nil
		}
	}
	return NewInvalidTransition("wht_tracking", current, target)
}

// DeriveWhtFlags summarizes a box's tracking records for the checklist:
// satisfied when at least one certificate reached its settled state (sent out,
// or received in), waiting when one is underway but not settled. The box-level
// hasWht flag stays independent of these records.
func DeriveWhtFlags(trackings []model.WhtTracking) Flags {
	var flags Flags
	for _, t := range trackings {
		switch t.Type {
		case model.WhtTypeOutgoing:
			switch t.Status {
			case model.WhtStatusSent, model.WhtStatusConfirmed:
				flags.WhtSatisfied = true
			case model.WhtStatusIssued:
				flags.WhtWaiting = true
			}
		case model.WhtTypeIncoming:
			switch t.Status {
			case model.WhtStatusReceived:
				flags.WhtSatisfied = true
			case model.WhtStatusPending:
				flags.WhtWaiting = true
			}
		}
	}
	return flags
}
