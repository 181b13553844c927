package service

import (
	"context"
	"testing"
	"time"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type whtFixture struct {
	svc        WhtService
	whtRepo    *fakeWhtRepo
	boxRepo    *fakeBoxRepo
	boxService *fakeBoxService
}

func newWhtFixture() *whtFixture {
	whtRepo := newFakeWhtRepo()
	boxRepo := newFakeBoxRepo()
	boxService := &fakeBoxService{}
	svc := NewWhtService(whtRepo, boxRepo, &fakeAuditRepo{}, &fakeTxManager{}, boxService, notify.NewHub())
	return &whtFixture{svc: svc, whtRepo: whtRepo, boxRepo: boxRepo, boxService: boxService}
}

func (fx *whtFixture) addWhtBox(t *testing.T) uuid.UUID {
	t.Helper()
	box := &model.Box{
		BoxType:     model.BoxTypeExpense,
		Status:      model.BoxStatusPending,
		TotalAmount: decimal.RequireFromString("1000.00"),
		HasWht:      true,
	}
	if err := fx.boxRepo.Create(context.Background(), box); err != nil {
		t.Fatalf("seed box: %v", err)
	}
	return box.ID
}

func (fx *whtFixture) createOutgoing(t *testing.T, boxID uuid.UUID) WhtTrackingResponse {
	t.Helper()
	resp, err := fx.svc.CreateTracking(context.Background(), boxID.String(), uuid.NewString(), CreateWhtTrackingRequest{
		Type:        model.WhtTypeOutgoing,
		WhtAmount:   "30.00",
		WhtRate:     "3",
		ContactName: "ACME Supplies",
	})
	if err != nil {
		t.Fatalf("CreateTracking: %v", err)
	}
	return resp
}

func TestCreateTrackingRequiresWhtConfigured(t *testing.T) {
	fx := newWhtFixture()
	box := &model.Box{
		BoxType:     model.BoxTypeExpense,
		Status:      model.BoxStatusPending,
		TotalAmount: decimal.RequireFromString("1000.00"),
	}
	if err := fx.boxRepo.Create(context.Background(), box); err != nil {
		t.Fatalf("seed box: %v", err)
	}

	_, err := fx.svc.CreateTracking(context.Background(), box.ID.String(), uuid.NewString(), CreateWhtTrackingRequest{
		Type:      model.WhtTypeOutgoing,
		WhtAmount: "30.00",
		WhtRate:   "3",
	})
	if err == nil {
		t.Fatal("expected error for a box without withholding tax configured")
	}
}

func TestOutgoingLifecycleStampsDatesInOrder(t *testing.T) {
	fx := newWhtFixture()
	ctx := context.Background()
	boxID := fx.addWhtBox(t)
	created := fx.createOutgoing(t, boxID)

	userID := uuid.NewString()
	for _, target := range []string{model.WhtStatusIssued, model.WhtStatusSent, model.WhtStatusConfirmed} {
		if _, err := fx.svc.Advance(ctx, created.ID, userID, AdvanceWhtRequest{Target: target}); err != nil {
			t.Fatalf("Advance to %s: %v", target, err)
		}
	}

	tracking, err := fx.whtRepo.FindByID(ctx, uuid.MustParse(created.ID))
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if tracking.Status != model.WhtStatusConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", tracking.Status)
	}

	// A confirmed certificate always carries the full date trail.
	if tracking.IssuedDate == nil || tracking.SentDate == nil || tracking.ConfirmedDate == nil {
		t.Fatalf("expected issued, sent and confirmed dates all set, got %v %v %v",
			tracking.IssuedDate, tracking.SentDate, tracking.ConfirmedDate)
	}
	assertNotAfter(t, "issued", *tracking.IssuedDate, "sent", *tracking.SentDate)
	assertNotAfter(t, "sent", *tracking.SentDate, "confirmed", *tracking.ConfirmedDate)
}

func assertNotAfter(t *testing.T, aName string, a time.Time, bName string, b time.Time) {
	t.Helper()
	if a.After(b) {
		t.Errorf("%s date %s is after %s date %s", aName, a, bName, b)
	}
}

func TestAdvanceRejectsSkippedStep(t *testing.T) {
	fx := newWhtFixture()
	ctx := context.Background()
	boxID := fx.addWhtBox(t)
	created := fx.createOutgoing(t, boxID)

	// SENT straight from PENDING skips the issue step.
	if _, err := fx.svc.Advance(ctx, created.ID, uuid.NewString(), AdvanceWhtRequest{Target: model.WhtStatusSent}); err == nil {
		t.Fatal("expected out-of-order transition to be rejected")
	}

	tracking, err := fx.whtRepo.FindByID(ctx, uuid.MustParse(created.ID))
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if tracking.Status != model.WhtStatusPending {
		t.Errorf("status = %s, want PENDING untouched", tracking.Status)
	}
	if tracking.SentDate != nil {
		t.Error("expected no sent date on a rejected transition")
	}
}

func TestCancelStampsCancelledDate(t *testing.T) {
	fx := newWhtFixture()
	ctx := context.Background()
	boxID := fx.addWhtBox(t)
	created := fx.createOutgoing(t, boxID)

	resp, err := fx.svc.Cancel(ctx, created.ID, uuid.NewString())
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if resp.Status != model.WhtStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", resp.Status)
	}

	tracking, err := fx.whtRepo.FindByID(ctx, uuid.MustParse(created.ID))
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if tracking.CancelledDate == nil {
		t.Error("expected cancelled date stamped")
	}
}

func TestWhtTransitionRefreshesChecklist(t *testing.T) {
	fx := newWhtFixture()
	ctx := context.Background()
	boxID := fx.addWhtBox(t)
	created := fx.createOutgoing(t, boxID)

	refreshesBefore := len(fx.boxService.refreshed)
	if _, err := fx.svc.Advance(ctx, created.ID, uuid.NewString(), AdvanceWhtRequest{Target: model.WhtStatusIssued}); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if len(fx.boxService.refreshed) != refreshesBefore+1 {
		t.Errorf("expected one checklist refresh after the transition, got %d", len(fx.boxService.refreshed)-refreshesBefore)
	}
}
