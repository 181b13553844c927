package rules

import (
	"testing"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
)

func TestValidateWhtTransition(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		current string
		target  string
		wantErr bool
	}{
		{"outgoing pending to issued", model.WhtTypeOutgoing, model.WhtStatusPending, model.WhtStatusIssued, false},
		{"outgoing issued to sent", model.WhtTypeOutgoing, model.WhtStatusIssued, model.WhtStatusSent, false},
		{"outgoing sent to confirmed", model.WhtTypeOutgoing, model.WhtStatusSent, model.WhtStatusConfirmed, false},
		{"outgoing cannot skip issued", model.WhtTypeOutgoing, model.WhtStatusPending, model.WhtStatusSent, true},
		{"outgoing cannot skip to confirmed", model.WhtTypeOutgoing, model.WhtStatusIssued, model.WhtStatusConfirmed, true},
		{"outgoing cannot go backwards", model.WhtTypeOutgoing, model.WhtStatusSent, model.WhtStatusIssued, true},
		{"confirmed is terminal", model.WhtTypeOutgoing, model.WhtStatusConfirmed, model.WhtStatusCancelled, true},
		{"cancel from pending", model.WhtTypeOutgoing, model.WhtStatusPending, model.WhtStatusCancelled, false},
		{"cancel from issued", model.WhtTypeOutgoing, model.WhtStatusIssued, model.WhtStatusCancelled, false},
		{"cancelled is terminal", model.WhtTypeOutgoing, model.WhtStatusCancelled, model.WhtStatusIssued, true},
		{"incoming pending to received", model.WhtTypeIncoming, model.WhtStatusPending, model.WhtStatusReceived, false},
		{"incoming cannot take outgoing states", model.WhtTypeIncoming, model.WhtStatusPending, model.WhtStatusIssued, true},
		{"received is terminal", model.WhtTypeIncoming, model.WhtStatusReceived, model.WhtStatusCancelled, true},
		{"incoming cancel from pending", model.WhtTypeIncoming, model.WhtStatusPending, model.WhtStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWhtTransition(tt.typ, tt.current, tt.target)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateWhtTransition(%s, %s, %s) error = %v, wantErr %v",
					tt.typ, tt.current, tt.target, err, tt.wantErr)
			}
		})
	}
}

func TestNextWhtStatuses(t *testing.T) {
	tests := []struct {
		typ     string
		current string
		want    []string
	}{
		{model.WhtTypeOutgoing, model.WhtStatusPending, []string{model.WhtStatusIssued, model.WhtStatusCancelled}},
		{model.WhtTypeOutgoing, model.WhtStatusSent, []string{model.WhtStatusConfirmed, model.WhtStatusCancelled}},
		{model.WhtTypeOutgoing, model.WhtStatusConfirmed, nil},
		{model.WhtTypeIncoming, model.WhtStatusPending, []string{model.WhtStatusReceived, model.WhtStatusCancelled}},
		{model.WhtTypeIncoming, model.WhtStatusReceived, nil},
		{model.WhtTypeOutgoing, model.WhtStatusCancelled, nil},
	}

	for _, tt := range tests {
		got := NextWhtStatuses(tt.typ, tt.current)
		if len(got) != len(tt.want) {
			t.Errorf("NextWhtStatuses(%s, %s) = %v, want %v", tt.typ, tt.current, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("NextWhtStatuses(%s, %s) = %v, want %v", tt.typ, tt.current, got, tt.want)
				break
			}
		}
	}
}

func TestDeriveWhtFlags(t *testing.T) {
	tests := []struct {
		name      string
		trackings []model.WhtTracking
		want      Flags
	}{
		{
			name: "no trackings",
		},
		{
			name:      "outgoing issued is waiting",
			trackings: []model.WhtTracking{{Type: model.WhtTypeOutgoing, Status: model.WhtStatusIssued}},
			want:      Flags{WhtWaiting: true},
		},
		{
			name:      "outgoing sent is satisfied",
			trackings: []model.WhtTracking{{Type: model.WhtTypeOutgoing, Status: model.WhtStatusSent}},
			want:      Flags{WhtSatisfied: true},
		},
		{
			name:      "outgoing confirmed is satisfied",
			trackings: []model.WhtTracking{{Type: model.WhtTypeOutgoing, Status: model.WhtStatusConfirmed}},
			want:      Flags{WhtSatisfied: true},
		},
		{
			name:      "incoming pending is waiting",
			trackings: []model.WhtTracking{{Type: model.WhtTypeIncoming, Status: model.WhtStatusPending}},
			want:      Flags{WhtWaiting: true},
		},
		{
			name:      "incoming received is satisfied",
			trackings: []model.WhtTracking{{Type: model.WhtTypeIncoming, Status: model.WhtStatusReceived}},
			want:      Flags{WhtSatisfied: true},
		},
		{
			name:      "cancelled contributes nothing",
			trackings: []model.WhtTracking{{Type: model.WhtTypeOutgoing, Status: model.WhtStatusCancelled}},
		},
		{
			name: "one settled and one underway sets both",
			trackings: []model.WhtTracking{
				{Type: model.WhtTypeOutgoing, Status: model.WhtStatusConfirmed},
				{Type: model.WhtTypeOutgoing, Status: model.WhtStatusIssued},
			},
			want: Flags{WhtSatisfied: true, WhtWaiting: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveWhtFlags(tt.trackings)
			if got.WhtSatisfied != tt.want.WhtSatisfied || got.WhtWaiting != tt.want.WhtWaiting {
				t.Fatalf("DeriveWhtFlags = %+v, want %+v", got, tt.want)
			}
		})
	}
}
