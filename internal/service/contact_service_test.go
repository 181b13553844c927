package service

import (
	"context"
	"testing"
)

func TestCreateContactRejectsDuplicateTaxID(t *testing.T) {
	repo := newFakeContactRepo()
	svc := NewContactService(repo)
	ctx := context.Background()

	first, err := svc.CreateContact(ctx, CreateContactRequest{
		Name:  "ACME Supplies",
		Kind:  "VENDOR",
		TaxID: "0105551234567",
	})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}
	if !first.IsActive {
		t.Error("expected a new contact to be active")
	}

	_, err = svc.CreateContact(ctx, CreateContactRequest{
		Name:  "ACME Clone",
		Kind:  "VENDOR",
		TaxID: "0105551234567",
	})
	if err == nil {
		t.Fatal("expected duplicate tax id to be rejected")
	}
}

func TestUpdateContactKeepsOwnTaxID(t *testing.T) {
	repo := newFakeContactRepo()
	svc := NewContactService(repo)
	ctx := context.Background()

	created, err := svc.CreateContact(ctx, CreateContactRequest{
		Name:  "ACME Supplies",
		Kind:  "VENDOR",
		TaxID: "0105551234567",
	})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}

	// Re-sending the contact's own tax id together with a rename must pass
	// the duplicate check.
	name := "ACME Supplies Co., Ltd."
	taxID := created.TaxID
	updated, err := svc.UpdateContact(ctx, created.ID, UpdateContactRequest{Name: &name, TaxID: &taxID})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if updated.Name != name {
		t.Errorf("name = %q, want %q", updated.Name, name)
	}
}

func TestUpdateContactRejectsForeignTaxID(t *testing.T) {
	repo := newFakeContactRepo()
	svc := NewContactService(repo)
	ctx := context.Background()

	_, err := svc.CreateContact(ctx, CreateContactRequest{Name: "ACME", Kind: "VENDOR", TaxID: "0105551234567"})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}
	other, err := svc.CreateContact(ctx, CreateContactRequest{Name: "Globex", Kind: "CUSTOMER", TaxID: "0105559999999"})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}

	taken := "0105551234567"
	if _, err := svc.UpdateContact(ctx, other.ID, UpdateContactRequest{TaxID: &taken}); err == nil {
		t.Fatal("expected another contact's tax id to be rejected")
	}
}

func TestDeactivateContact(t *testing.T) {
	repo := newFakeContactRepo()
	svc := NewContactService(repo)
	ctx := context.Background()

	created, err := svc.CreateContact(ctx, CreateContactRequest{Name: "ACME", Kind: "VENDOR"})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}

	inactive := false
	updated, err := svc.UpdateContact(ctx, created.ID, UpdateContactRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if updated.IsActive {
		t.Error("expected the contact deactivated")
	}

	got, err := svc.GetContact(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetContact: %v", err)
	}
	if got.IsActive {
		t.Error("expected deactivation persisted")
	}
}
