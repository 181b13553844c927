package rules

import (
	"strings"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/extraction"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NumericTolerance is the currency-minor-unit tolerance: two extracted numeric
// candidates closer than this are one value cluster, not a conflict.
var NumericTolerance = decimal.NewFromFloat(0.5)

// FieldSource records which file contributed a candidate and how confident the
// extractor was.
type FieldSource struct {
	FileID     uuid.UUID `json:"file_id"`
	Confidence float64   `json:"confidence"`
}

// Aggregated is the merged view of one field across all of a box's files.
// It is ephemeral review-step state, recomputed whenever the file set changes.
type Aggregated[T any] struct {
	Value        T             `json:"value"`
	Present      bool          `json:"present"`
	Sources      []FieldSource `json:"sources"`
	HasConflict  bool          `json:"has_conflict"`
	AllValues    []T           `json:"all_values"`
	IsUserEdited bool          `json:"is_user_edited"`
}

// FileError records a per-file extraction failure kept alongside the merged
// fields; a failed file simply contributes no candidates.
type FileError struct {
	FileID uuid.UUID `json:"file_id"`
	Error  string    `json:"error"`
}

// AggregatedRecord is the one coherent record merged from every file's
// extraction result, ready for the review/confirm step.
type AggregatedRecord struct {
	DocType        Aggregated[string]          `json:"doc_type"`
	Amount         Aggregated[decimal.Decimal] `json:"amount"`
	VatAmount      Aggregated[decimal.Decimal] `json:"vat_amount"`
	Description    Aggregated[string]          `json:"description"`
	ContactName    Aggregated[string]          `json:"contact_name"`
	DocumentDate   Aggregated[string]          `json:"document_date"`
	DocumentNumber Aggregated[string]          `json:"document_number"`
	TaxID          Aggregated[string]          `json:"tax_id"`
	Errors         []FileError                 `json:"errors,omitempty"`
}

// Overrides are user-supplied field values from the review step. An override
// always wins over every computed candidate and persists until cleared.
type Overrides struct {
	DocType        *string          `json:"doc_type"`
	Amount         *decimal.Decimal `json:"amount"`
	VatAmount      *decimal.Decimal `json:"vat_amount"`
	Description    *string          `json:"description"`
	ContactName    *string          `json:"contact_name"`
	DocumentDate   *string          `json:"document_date"`
	DocumentNumber *string          `json:"document_number"`
	TaxID          *string          `json:"tax_id"`
}

type stringCandidate struct {
	value  string
	source FieldSource
}

type decimalCandidate struct {
	value  decimal.Decimal
	source FieldSource
}

// AggregateFields merges per-file extraction results into one record per field,
// with conflict flags and source provenance. Failed files are recorded in
// Errors and contribute nothing else.
func AggregateFields(results []extraction.Result, ov Overrides) AggregatedRecord {
	var rec AggregatedRecord

	var docTypes, descriptions, contactNames, dates, docNumbers, taxIDs []stringCandidate
	var amounts, vatAmounts []decimalCandidate

	for _, r := range results {
		if r.Failed() {
			rec.Errors = append(rec.Errors, FileError{FileID: r.FileID, Error: r.Error})
			continue
		}
		src := FieldSource{FileID: r.FileID, Confidence: r.Confidence}

		if r.DocType != "" {
			docTypes = append(docTypes, stringCandidate{r.DocType, src})
		}
		if r.Description != "" {
			descriptions = append(descriptions, stringCandidate{r.Description, src})
		}
		if r.ContactName != "" {
			contactNames = append(contactNames, stringCandidate{r.ContactName, src})
		}
		if r.DocumentDate != "" {
			dates = append(dates, stringCandidate{r.DocumentDate, src})
		}
		if r.DocumentNumber != "" {
			docNumbers = append(docNumbers, stringCandidate{r.DocumentNumber, src})
		}
		if r.TaxID != "" {
			taxIDs = append(taxIDs, stringCandidate{r.TaxID, src})
		}
		if r.Amount != nil {
			amounts = append(amounts, decimalCandidate{*r.Amount, src})
		}
		if r.VatAmount != nil {
			vatAmounts = append(vatAmounts, decimalCandidate{*r.VatAmount, src})
		}
	}

	rec.DocType = aggregateDocType(docTypes)
	rec.Amount = aggregateNumeric(amounts)
	rec.VatAmount = aggregateNumeric(vatAmounts)
	rec.Description = aggregateString(descriptions, normalizeString)
	rec.ContactName = aggregateString(contactNames, normalizeString)
	rec.DocumentDate = aggregateString(dates, func(s string) string { return s }) // dates compare exactly
	rec.DocumentNumber = aggregateDocumentNumber(docNumbers)
	rec.TaxID = aggregateString(taxIDs, normalizeString)

	applyOverrides(&rec, ov)
	return rec
}

func normalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// aggregateString clusters candidates by a normalization key. More than one
// cluster means the files disagree. The primary value is the candidate with the
// highest confidence; ties keep the first-seen candidate.
func aggregateString(cands []stringCandidate, key func(string) string) Aggregated[string] {
	var agg Aggregated[string]
	if len(cands) == 0 {
		return agg
	}

	clusters := map[string]bool{}
	best := cands[0]
	for _, c := range cands {
		agg.Sources = append(agg.Sources, c.source)
		k := key(c.value)
		if !clusters[k] {
			clusters[k] = true
			agg.AllValues = append(agg.AllValues, c.value)
		}
		if c.source.Confidence > best.source.Confidence {
			best = c
		}
	}

	agg.Present = true
	agg.Value = best.value
	agg.HasConflict = len(clusters) > 1
	return agg
}

// aggregateNumeric clusters candidates within NumericTolerance of a cluster's
// first member. Conflict means more than one distinct value cluster exists.
func aggregateNumeric(cands []decimalCandidate) Aggregated[decimal.Decimal] {
	var agg Aggregated[decimal.Decimal]
	if len(cands) == 0 {
		return agg
	}

	var reps []decimal.Decimal
	best := cands[0]
	for _, c := range cands {
		agg.Sources = append(agg.Sources, c.source)

		matched := false
		for _, rep := range reps {
			if c.value.Sub(rep).Abs().LessThan(NumericTolerance) {
				matched = true
				break
			}
		}
		if !matched {
			reps = append(reps, c.value)
			agg.AllValues = append(agg.AllValues, c.value)
		}
		if c.source.Confidence > best.source.Confidence {
			best = c
		}
	}

	agg.Present = true
	agg.Value = best.value
	agg.HasConflict = len(reps) > 1
	return agg
}

// aggregateDocumentNumber records every distinct number without ever flagging a
// conflict; distinct documents legitimately carry distinct numbers.
func aggregateDocumentNumber(cands []stringCandidate) Aggregated[string] {
	agg := aggregateString(cands, func(s string) string { return strings.TrimSpace(s) })
	agg.HasConflict = false
	return agg
}

// aggregateDocType never conflicts, and a self-reported tax invoice wins over
// any other candidate regardless of confidence; a companion slip's guess does
// not outvote the invoice itself.
func aggregateDocType(cands []stringCandidate) Aggregated[string] {
	agg := aggregateString(cands, func(s string) string { return s })
	agg.HasConflict = false
	for _, v := range agg.AllValues {
		if v == model.DocTypeTaxInvoice {
			agg.Value = v
			break
		}
	}
	return agg
}

func applyOverrides(rec *AggregatedRecord, ov Overrides) {
	if ov.DocType != nil {
		setOverride(&rec.DocType, *ov.DocType)
	}
	if ov.Amount != nil {
		setOverride(&rec.Amount, *ov.Amount)
	}
	if ov.VatAmount != nil {
		setOverride(&rec.VatAmount, *ov.VatAmount)
	}
	if ov.Description != nil {
		setOverride(&rec.Description, *ov.Description)
	}
	if ov.ContactName != nil {
		setOverride(&rec.ContactName, *ov.ContactName)
	}
	if ov.DocumentDate != nil {
		setOverride(&rec.DocumentDate, *ov.DocumentDate)
	}
	if ov.DocumentNumber != nil {
		setOverride(&rec.DocumentNumber, *ov.DocumentNumber)
	}
	if ov.TaxID != nil {
		setOverride(&rec.TaxID, *ov.TaxID)
	}
}

func setOverride[T any](agg *Aggregated[T], value T) {
	agg.Value = value
	agg.Present = true
	agg.IsUserEdited = true
}
