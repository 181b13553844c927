package rules

import (
	"testing"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
)

func itemByID(t *testing.T, cl Checklist, id string) ChecklistItem {
	t.Helper()
	for _, item := range cl.Items {
		if item.RequirementID == id {
			return item
		}
	}
	t.Fatalf("checklist has no item %s", id)
	return ChecklistItem{}
}

func TestEvaluateChecklist(t *testing.T) {
	catalog := DefaultCatalog()
	expenseReqs := catalog.RequiredDocuments(model.BoxTypeExpense, strPtr(model.ExpenseTypeStandard), true, true)

	tests := []struct {
		name           string
		docTypes       map[string]int
		na             map[string]bool
		flags          Flags
		wantPercent    int
		wantItemStatus map[string]string
	}{
		{
			name:        "nothing uploaded",
			docTypes:    map[string]int{},
			wantPercent: 0,
			wantItemStatus: map[string]string{
				ReqPaymentProof: ItemMissing,
				ReqTaxInvoice:   ItemMissing,
				ReqWhtSent:      ItemMissing,
			},
		},
		{
			name:        "slip satisfies payment proof",
			docTypes:    map[string]int{model.DocTypeSlipTransfer: 1},
			wantPercent: 33,
			wantItemStatus: map[string]string{
				ReqPaymentProof: ItemSatisfied,
			},
		},
		{
			name:        "all three satisfied",
			docTypes:    map[string]int{model.DocTypeSlipTransfer: 1, model.DocTypeTaxInvoiceAbb: 1, model.DocTypeWhtSent: 1},
			wantPercent: 100,
		},
		{
			name:        "not applicable counts as done",
			docTypes:    map[string]int{model.DocTypeSlipTransfer: 1, model.DocTypeTaxInvoice: 1},
			na:          map[string]bool{ReqWhtSent: true},
			wantPercent: 100,
			wantItemStatus: map[string]string{
				ReqWhtSent: ItemNotApplicable,
			},
		},
		{
			name:        "verified vat flag satisfies tax invoice without upload",
			docTypes:    map[string]int{},
			flags:       Flags{VatVerified: true},
			wantPercent: 33,
			wantItemStatus: map[string]string{
				ReqTaxInvoice: ItemSatisfied,
			},
		},
		{
			name:        "paid flag satisfies payment proof without upload",
			docTypes:    map[string]int{},
			flags:       Flags{IsPaid: true},
			wantPercent: 33,
			wantItemStatus: map[string]string{
				ReqPaymentProof: ItemSatisfied,
			},
		},
		{
			name:        "wht waiting is not done",
			docTypes:    map[string]int{model.DocTypeSlipTransfer: 1, model.DocTypeTaxInvoice: 1},
			flags:       Flags{WhtWaiting: true},
			wantPercent: 67,
			wantItemStatus: map[string]string{
				ReqWhtSent: ItemWaiting,
			},
		},
		{
			name:        "wht satisfied through tracking",
			docTypes:    map[string]int{model.DocTypeSlipTransfer: 1, model.DocTypeTaxInvoice: 1},
			flags:       Flags{WhtSatisfied: true},
			wantPercent: 100,
			wantItemStatus: map[string]string{
				ReqWhtSent: ItemSatisfied,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := EvaluateChecklist(expenseReqs, tt.docTypes, tt.na, tt.flags)
			if cl.CompletionPercent != tt.wantPercent {
				t.Errorf("completion = %d, want %d", cl.CompletionPercent, tt.wantPercent)
			}
			for id, want := range tt.wantItemStatus {
				if got := itemByID(t, cl, id).Status; got != want {
					t.Errorf("item %s = %s, want %s", id, got, want)
				}
			}
		})
	}
}

func TestChecklistOptionalItemDoesNotCount(t *testing.T) {
	catalog := DefaultCatalog()
	reqs := catalog.RequiredDocuments(model.BoxTypeIncome, nil, false, false)

	// Invoice present, receipt absent: the optional receipt must not hold the
	// completion below 100.
	cl := EvaluateChecklist(reqs, map[string]int{model.DocTypeInvoice: 1}, nil, Flags{})
	if cl.CompletionPercent != 100 {
		t.Fatalf("completion = %d, want 100", cl.CompletionPercent)
	}
	if got := itemByID(t, cl, ReqReceipt).Status; got != ItemMissing {
		t.Fatalf("receipt status = %s, want %s", got, ItemMissing)
	}
}

func TestChecklistZeroRequirements(t *testing.T) {
	cl := EvaluateChecklist(nil, nil, nil, Flags{})
	if cl.CompletionPercent != 100 {
		t.Fatalf("empty requirement set completion = %d, want 100", cl.CompletionPercent)
	}
}

func TestChecklistMonotonicUnderUploads(t *testing.T) {
	catalog := DefaultCatalog()
	reqs := catalog.RequiredDocuments(model.BoxTypeExpense, strPtr(model.ExpenseTypeStandard), true, true)

	docTypes := map[string]int{}
	prev := EvaluateChecklist(reqs, docTypes, nil, Flags{}).CompletionPercent

	for _, dt := range []string{model.DocTypeSlipTransfer, model.DocTypeTaxInvoice, model.DocTypeWhtSent} {
		docTypes[dt]++
		cur := EvaluateChecklist(reqs, docTypes, nil, Flags{}).CompletionPercent
		if cur < prev {
			t.Fatalf("completion dropped from %d to %d after adding %s", prev, cur, dt)
		}
		prev = cur
	}
	if prev != 100 {
		t.Fatalf("final completion = %d, want 100", prev)
	}
}
