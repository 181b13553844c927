package rules

import "github.com/LOSTXKER/anajakdoc-sub000/internal/model"

// Action enum for explicit box lifecycle actions.
const (
	ActionSubmit   = "submit"
	ActionApprove  = "approve"
	ActionNeedInfo = "need_info"
	ActionResubmit = "resubmit"
	ActionReject   = "reject"
	ActionDelete   = "delete"
)

// IsTerminalStatus reports whether a box status admits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == model.BoxStatusCompleted ||
		status == model.BoxStatusRejected ||
		status == model.BoxStatusVoid
}

// Transition resolves an explicit lifecycle action against the current status.
// Approval is a human override: it succeeds from PENDING regardless of checklist
// completion; the caller surfaces the gap, it does not block on it.
func Transition(current, action string) (string, error) {
	switch action {
	case ActionSubmit:
		if current == model.BoxStatusDraft {
			return model.BoxStatusPending, nil
		}
	case ActionNeedInfo:
		if current == model.BoxStatusPending {
			return model.BoxStatusNeedDocs, nil
		}
	case ActionApprove:
		if current == model.BoxStatusPending {
			return model.BoxStatusCompleted, nil
		}
	case ActionResubmit:
		if current == model.BoxStatusNeedDocs {
			return model.BoxStatusPending, nil
		}
	case ActionReject:
		if current == model.BoxStatusPending || current == model.BoxStatusNeedDocs {
			return model.BoxStatusRejected, nil
		}
	case ActionDelete:
		if current == model.BoxStatusDraft {
			return model.BoxStatusVoid, nil
		}
	}
	return current, NewInvalidTransition("box", current, action)
}

// AutoAdjust applies the completeness-driven PENDING <-> NEED_DOCS toggle, the
// only transition that happens without a human action. Returns the (possibly
// unchanged) status and whether it changed. Safe to call after every checklist
// recompute.
func AutoAdjust(current string, completionPercent int) (string, bool) {
	switch current {
	case model.BoxStatusPending:
		if completionPercent < 100 {
			return model.BoxStatusNeedDocs, true
		}
	case model.BoxStatusNeedDocs:
		if completionPercent >= 100 {
			return model.BoxStatusPending, true
		}
	}
	return current, false
}
