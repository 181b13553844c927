package rules

import (
	"errors"
	"testing"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		current string
		action  string
		want    string
		wantErr bool
	}{
		{"submit draft", model.BoxStatusDraft, ActionSubmit, model.BoxStatusPending, false},
		{"submit pending is rejected", model.BoxStatusPending, ActionSubmit, "", true},
		{"need info from pending", model.BoxStatusPending, ActionNeedInfo, model.BoxStatusNeedDocs, false},
		{"approve pending", model.BoxStatusPending, ActionApprove, model.BoxStatusCompleted, false},
		{"approve draft is rejected", model.BoxStatusDraft, ActionApprove, "", true},
		{"resubmit need docs", model.BoxStatusNeedDocs, ActionResubmit, model.BoxStatusPending, false},
		{"resubmit draft is rejected", model.BoxStatusDraft, ActionResubmit, "", true},
		{"reject pending", model.BoxStatusPending, ActionReject, model.BoxStatusRejected, false},
		{"reject need docs", model.BoxStatusNeedDocs, ActionReject, model.BoxStatusRejected, false},
		{"delete draft", model.BoxStatusDraft, ActionDelete, model.BoxStatusVoid, false},
		{"delete pending is rejected", model.BoxStatusPending, ActionDelete, "", true},
		{"completed is terminal", model.BoxStatusCompleted, ActionSubmit, "", true},
		{"rejected is terminal", model.BoxStatusRejected, ActionResubmit, "", true},
		{"void is terminal", model.BoxStatusVoid, ActionSubmit, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.action)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Transition(%s, %s) expected error, got %s", tt.current, tt.action, got)
				}
				var invalid *InvalidTransitionError
				if !errors.As(err, &invalid) {
					t.Fatalf("error is %T, want *InvalidTransitionError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition(%s, %s) unexpected error: %v", tt.current, tt.action, err)
			}
			if got != tt.want {
				t.Fatalf("Transition(%s, %s) = %s, want %s", tt.current, tt.action, got, tt.want)
			}
		})
	}
}

func TestApproveIgnoresCompleteness(t *testing.T) {
	// Approval is a human override: it must succeed from PENDING even while the
	// checklist sits at 0%. The caller is expected to surface the gap as a
	// warning, not an error.
	got, err := Transition(model.BoxStatusPending, ActionApprove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != model.BoxStatusCompleted {
		t.Fatalf("got %s, want %s", got, model.BoxStatusCompleted)
	}
}

func TestAutoAdjust(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		completion  int
		want        string
		wantChanged bool
	}{
		{"pending drops below 100", model.BoxStatusPending, 67, model.BoxStatusNeedDocs, true},
		{"pending stays at 100", model.BoxStatusPending, 100, model.BoxStatusPending, false},
		{"need docs climbs to 100", model.BoxStatusNeedDocs, 100, model.BoxStatusPending, true},
		{"need docs stays below 100", model.BoxStatusNeedDocs, 50, model.BoxStatusNeedDocs, false},
		{"draft never auto adjusts", model.BoxStatusDraft, 0, model.BoxStatusDraft, false},
		{"completed never auto adjusts", model.BoxStatusCompleted, 0, model.BoxStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := AutoAdjust(tt.current, tt.completion)
			if got != tt.want || changed != tt.wantChanged {
				t.Fatalf("AutoAdjust(%s, %d) = (%s, %v), want (%s, %v)",
					tt.current, tt.completion, got, changed, tt.want, tt.wantChanged)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for _, s := range []string{model.BoxStatusCompleted, model.BoxStatusRejected, model.BoxStatusVoid} {
		if !IsTerminalStatus(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []string{model.BoxStatusDraft, model.BoxStatusPending, model.BoxStatusNeedDocs} {
		if IsTerminalStatus(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
