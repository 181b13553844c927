// Package rules holds the pure decision core: document requirements, checklist
// evaluation, the box lifecycle state machine, payment status derivation, WHT
// certificate transitions, extracted-field aggregation, and pending-box matching.
// Nothing in this package touches the database or performs I/O; services call
// these functions and persist the outcome.
package rules

import (
	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
)

// RequirementID constants: the checklist line items a box configuration can demand.
const (
	ReqPaymentProof = "payment_proof"
	ReqTaxInvoice   = "tax_invoice"
	ReqCashReceipt  = "cash_receipt"
	ReqInvoice      = "invoice"
	ReqReceipt      = "receipt"
	ReqWhtSent      = "wht_sent"
	ReqWhtReceived  = "wht_received"
)

// Requirement is one document demand derived from a box's tax configuration.
type Requirement struct {
	ID               string   `json:"id"`
	AcceptedDocTypes []string `json:"accepted_doc_types"`
	Required         bool     `json:"required"`
}

// Catalog maps requirement ids to the document types that satisfy them. It is
// plain injected data, swappable per organization, rather than module state.
type Catalog struct {
	PaymentProof []string
	TaxInvoice   []string
	CashReceipt  []string
	Invoice      []string
	Receipt      []string
	WhtSent      []string
	WhtReceived  []string
}

// DefaultCatalog returns the stock document-type groupings. Functionally
// equivalent doc types (e.g. the two slip kinds) live in one group so a box
// never needs more than one document per group.
func DefaultCatalog() Catalog {
	return Catalog{
		PaymentProof: []string{model.DocTypeSlipTransfer, model.DocTypeSlipCheque, model.DocTypeBankStatement},
		TaxInvoice:   []string{model.DocTypeTaxInvoice, model.DocTypeTaxInvoiceAbb},
		CashReceipt:  []string{model.DocTypeCashReceipt},
		Invoice:      []string{model.DocTypeInvoice},
		Receipt:      []string{model.DocTypeReceipt, model.DocTypeCashReceipt},
		WhtSent:      []string{model.DocTypeWhtSent},
		WhtReceived:  []string{model.DocTypeWhtReceived},
	}
}

// GroupFor returns the equivalence group a document type belongs to, so a box
// keeps at most one Document per functionally-equivalent set. Unknown types are
// their own group.
func (c Catalog) GroupFor(docType string) []string {
	for _, group := range [][]string{c.PaymentProof, c.TaxInvoice, c.CashReceipt, c.Invoice, c.WhtSent, c.WhtReceived} {
		for _, dt := range group {
			if dt == docType {
				return group
			}
		}
	}
	return []string{docType}
}

// IsPaymentProof reports whether a document type counts as payment proof.
func (c Catalog) IsPaymentProof(docType string) bool {
	for _, dt := range c.PaymentProof {
		if dt == docType {
			return true
		}
	}
	return false
}

// RequiredDocuments derives the requirement set for one box configuration.
// It never fails: an unknown or absent configuration yields a reduced (possibly
// empty) set rather than an error.
func (c Catalog) RequiredDocuments(boxType string, expenseType *string, hasVat, hasWht bool) []Requirement {
	switch boxType {
	case model.BoxTypeExpense:
		return c.expenseRequirements(expenseType, hasVat, hasWht)
	case model.BoxTypeIncome:
		return c.incomeRequirements(hasVat, hasWht)
	default:
		// Configuration gap: no box type, no requirements.
		return nil
	}
}

func (c Catalog) expenseRequirements(expenseType *string, hasVat, hasWht bool) []Requirement {
	reqs := []Requirement{
		{ID: ReqPaymentProof, AcceptedDocTypes: c.PaymentProof, Required: true},
	}

	et := ""
	if expenseType != nil {
		et = *expenseType
	}

	if hasVat || et == model.ExpenseTypeStandard {
		reqs = append(reqs, Requirement{ID: ReqTaxInvoice, AcceptedDocTypes: c.TaxInvoice, Required: true})
	}
	if et == model.ExpenseTypeNoVat {
		reqs = append(reqs, Requirement{ID: ReqCashReceipt, AcceptedDocTypes: c.CashReceipt, Required: true})
	}
	if hasWht {
		reqs = append(reqs, Requirement{ID: ReqWhtSent, AcceptedDocTypes: c.WhtSent, Required: true})
	}

	return reqs
}

func (c Catalog) incomeRequirements(hasVat, hasWht bool) []Requirement {
	reqs := []Requirement{
		{ID: ReqInvoice, AcceptedDocTypes: c.Invoice, Required: true},
	}

	if hasVat {
		reqs = append(reqs, Requirement{ID: ReqTaxInvoice, AcceptedDocTypes: c.TaxInvoice, Required: true})
	}
	if hasWht {
		reqs = append(reqs, Requirement{ID: ReqWhtReceived, AcceptedDocTypes: c.WhtReceived, Required: true})
	}

	// Receipt is tracked but never blocks completion on the income side.
	reqs = append(reqs, Requirement{ID: ReqReceipt, AcceptedDocTypes: c.Receipt, Required: false})

	return reqs
}
