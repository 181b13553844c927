package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/extraction"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/rules"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeInboxRepo struct {
	drafts map[uuid.UUID]*model.InboxDraft
}

func newFakeInboxRepo() *fakeInboxRepo {
	return &fakeInboxRepo{drafts: map[uuid.UUID]*model.InboxDraft{}}
}

func (f *fakeInboxRepo) Create(ctx context.Context, draft *model.InboxDraft) error {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	copied := *draft
	f.drafts[draft.ID] = &copied
	return nil
}

func (f *fakeInboxRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InboxDraft, error) {
	draft, ok := f.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s not found", id)
	}
	copied := *draft
	return &copied, nil
}

func (f *fakeInboxRepo) Update(ctx context.Context, draft *model.InboxDraft) error {
	copied := *draft
	f.drafts[draft.ID] = &copied
	return nil
}

type fakeContactRepo struct {
	contacts map[uuid.UUID]*model.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: map[uuid.UUID]*model.Contact{}}
}

func (f *fakeContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	copied := *contact
	f.contacts[contact.ID] = &copied
	return nil
}

func (f *fakeContactRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	contact, ok := f.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %s not found", id)
	}
	copied := *contact
	return &copied, nil
}

func (f *fakeContactRepo) FindByTaxID(ctx context.Context, taxID string) (*model.Contact, error) {
	for _, c := range f.contacts {
		if c.TaxID == taxID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeContactRepo) List(ctx context.Context, page, limit int) ([]model.Contact, int64, error) {
	var out []model.Contact
	for _, c := range f.contacts {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeContactRepo) Update(ctx context.Context, contact *model.Contact) error {
	copied := *contact
	f.contacts[contact.ID] = &copied
	return nil
}

type inboxFixture struct {
	svc         InboxService
	inboxRepo   *fakeInboxRepo
	contactRepo *fakeContactRepo
}

func newInboxFixture() *inboxFixture {
	inboxRepo := newFakeInboxRepo()
	contactRepo := newFakeContactRepo()
	return &inboxFixture{
		svc:         NewInboxService(newFakeBoxRepo(), contactRepo, inboxRepo),
		inboxRepo:   inboxRepo,
		contactRepo: contactRepo,
	}
}

func extractedAmount(fileID uuid.UUID, amount string, confidence float64) extraction.Result {
	d := decimal.RequireFromString(amount)
	return extraction.Result{FileID: fileID, DocType: "TAX_INVOICE", Amount: &d, Confidence: confidence}
}

func TestAggregateCreatesDraft(t *testing.T) {
	fx := newInboxFixture()
	ctx := context.Background()

	resp, err := fx.svc.Aggregate(ctx, AggregateRequest{
		BoxType: model.BoxTypeExpense,
		Results: []extraction.Result{extractedAmount(uuid.New(), "100.00", 0.9)},
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if resp.DraftID == "" {
		t.Fatal("expected a draft id on the response")
	}

	id := uuid.MustParse(resp.DraftID)
	draft, err := fx.inboxRepo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("draft not persisted: %v", err)
	}
	if draft.Results == "" {
		t.Error("expected extraction results stored on the draft")
	}
}

func TestOverrideSurvivesLaterAggregation(t *testing.T) {
	fx := newInboxFixture()
	ctx := context.Background()

	first, err := fx.svc.Aggregate(ctx, AggregateRequest{
		BoxType: model.BoxTypeExpense,
		Results: []extraction.Result{extractedAmount(uuid.New(), "100.00", 0.9)},
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	edited := decimal.RequireFromString("250.00")
	resp, err := fx.svc.ApplyOverride(ctx, first.DraftID, rules.Overrides{Amount: &edited})
	if err != nil {
		t.Fatalf("ApplyOverride: %v", err)
	}
	if !resp.Record.Amount.Value.Equal(edited) {
		t.Fatalf("amount after override = %s, want 250.00", resp.Record.Amount.Value)
	}

	// A new file with a higher-confidence amount arrives; the user's edit
	// must still win without the client re-sending it.
	resp, err = fx.svc.Aggregate(ctx, AggregateRequest{
		DraftID: first.DraftID,
		BoxType: model.BoxTypeExpense,
		Results: []extraction.Result{
			extractedAmount(uuid.New(), "100.00", 0.9),
			extractedAmount(uuid.New(), "300.00", 0.99),
		},
	})
	if err != nil {
		t.Fatalf("Aggregate with draft: %v", err)
	}
	if !resp.Record.Amount.Value.Equal(edited) {
		t.Errorf("amount after re-aggregation = %s, want the edited 250.00", resp.Record.Amount.Value)
	}
	if !resp.Record.Amount.IsUserEdited {
		t.Error("expected the amount to stay flagged as user edited")
	}
}

func TestApplyOverrideMergesPerField(t *testing.T) {
	fx := newInboxFixture()
	ctx := context.Background()

	first, err := fx.svc.Aggregate(ctx, AggregateRequest{
		BoxType: model.BoxTypeExpense,
		Results: []extraction.Result{extractedAmount(uuid.New(), "100.00", 0.9)},
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	edited := decimal.RequireFromString("250.00")
	if _, err := fx.svc.ApplyOverride(ctx, first.DraftID, rules.Overrides{Amount: &edited}); err != nil {
		t.Fatalf("ApplyOverride amount: %v", err)
	}

	// Editing an unrelated field must not drop the earlier amount edit.
	name := "ACME Supplies"
	resp, err := fx.svc.ApplyOverride(ctx, first.DraftID, rules.Overrides{ContactName: &name})
	if err != nil {
		t.Fatalf("ApplyOverride contact name: %v", err)
	}
	if !resp.Record.Amount.Value.Equal(edited) {
		t.Errorf("amount = %s, want the earlier edit 250.00 kept", resp.Record.Amount.Value)
	}
	if resp.Record.ContactName.Value != name {
		t.Errorf("contact name = %q, want %q", resp.Record.ContactName.Value, name)
	}
}

func TestClearOverridesRestoresComputedValues(t *testing.T) {
	fx := newInboxFixture()
	ctx := context.Background()

	first, err := fx.svc.Aggregate(ctx, AggregateRequest{
		BoxType: model.BoxTypeExpense,
		Results: []extraction.Result{extractedAmount(uuid.New(), "100.00", 0.9)},
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	edited := decimal.RequireFromString("250.00")
	if _, err := fx.svc.ApplyOverride(ctx, first.DraftID, rules.Overrides{Amount: &edited}); err != nil {
		t.Fatalf("ApplyOverride: %v", err)
	}

	resp, err := fx.svc.ClearOverrides(ctx, first.DraftID)
	if err != nil {
		t.Fatalf("ClearOverrides: %v", err)
	}
	want := decimal.RequireFromString("100.00")
	if !resp.Record.Amount.Value.Equal(want) {
		t.Errorf("amount after clear = %s, want the computed 100.00", resp.Record.Amount.Value)
	}
	if resp.Record.Amount.IsUserEdited {
		t.Error("expected the user-edited flag cleared")
	}
}

func TestAggregateResolvesKnownContact(t *testing.T) {
	fx := newInboxFixture()
	ctx := context.Background()

	contact := &model.Contact{Name: "ACME Supplies", Kind: model.ContactKindVendor, TaxID: "0105551234567"}
	if err := fx.contactRepo.Create(ctx, contact); err != nil {
		t.Fatalf("seed contact: %v", err)
	}

	resp, err := fx.svc.Aggregate(ctx, AggregateRequest{
		BoxType: model.BoxTypeExpense,
		Results: []extraction.Result{{
			FileID:     uuid.New(),
			DocType:    "TAX_INVOICE",
			TaxID:      "0105551234567",
			Confidence: 0.95,
		}},
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if resp.ContactID == nil {
		t.Fatal("expected the counterpart resolved by tax id")
	}
	if *resp.ContactID != contact.ID.String() {
		t.Errorf("contact id = %s, want %s", *resp.ContactID, contact.ID)
	}
}
