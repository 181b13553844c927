package rules

import "math"

// ItemStatus enum for a single checklist line.
const (
	ItemSatisfied     = "satisfied"
	ItemMissing       = "missing"
	ItemWaiting       = "waiting"
	ItemNotApplicable = "not_applicable"
)

// Flags carries the persisted box status booleans that are not purely inferable
// from uploaded document types.
type Flags struct {
	VatVerified  bool // vat_doc_status == VERIFIED
	WhtWaiting   bool // a certificate was requested/sent but is not yet settled
	WhtSatisfied bool // at least one tracking record reached its settled state
	IsPaid       bool // payment_status == PAID (counts as payment proof)
}

// ChecklistItem is the evaluated state of one requirement.
type ChecklistItem struct {
	RequirementID    string   `json:"requirement_id"`
	Status           string   `json:"status"`
	Required         bool     `json:"required"`
	AcceptedDocTypes []string `json:"accepted_doc_types"`
}

// Checklist is the full evaluation of a box's requirement set.
type Checklist struct {
	Items             []ChecklistItem `json:"items"`
	CompletionPercent int             `json:"completion_percent"`
}

// Done reports whether an item counts toward completion.
func (i ChecklistItem) Done() bool {
	return i.Status == ItemSatisfied || i.Status == ItemNotApplicable
}

// EvaluateChecklist derives per-requirement satisfaction from the uploaded
// document types, the explicit not-applicable overrides, and the persisted
// status flags. It is deterministic and meant to be re-run in full after every
// file or flag mutation, never patched incrementally.
//
// docTypes is the multiset of doc types present among the box's documents.
// na holds requirement ids explicitly marked not applicable.
func EvaluateChecklist(reqs []Requirement, docTypes map[string]int, na map[string]bool, flags Flags) Checklist {
	items := make([]ChecklistItem, 0, len(reqs))
	requiredTotal := 0
	requiredDone := 0

	for _, req := range reqs {
		item := ChecklistItem{
			RequirementID:    req.ID,
			Required:         req.Required,
			AcceptedDocTypes: req.AcceptedDocTypes,
			Status:           evaluateItem(req, docTypes, na, flags),
		}
		items = append(items, item)

		if req.Required {
			requiredTotal++
			if item.Done() {
				requiredDone++
			}
		}
	}

	return Checklist{
		Items:             items,
		CompletionPercent: completionPercent(requiredDone, requiredTotal),
	}
}

func evaluateItem(req Requirement, docTypes map[string]int, na map[string]bool, flags Flags) string {
	if na[req.ID] {
		return ItemNotApplicable
	}

	for _, dt := range req.AcceptedDocTypes {
		if docTypes[dt] > 0 {
			return ItemSatisfied
		}
	}

	// Status flags can satisfy a requirement without an upload, and the WHT
	// sub-workflow contributes a waiting state distinct from missing.
	switch req.ID {
	case ReqTaxInvoice:
		if flags.VatVerified {
			return ItemSatisfied
		}
	case ReqPaymentProof:
		if flags.IsPaid {
			return ItemSatisfied
		}
	case ReqWhtSent, ReqWhtReceived:
		if flags.WhtSatisfied {
			return ItemSatisfied
		}
		if flags.WhtWaiting {
			return ItemWaiting
		}
	}

	return ItemMissing
}

// completionPercent rounds to the nearest integer. A box with zero required
// items is defined as fully complete.
func completionPercent(done, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
