// Package extraction defines the contract with the external AI/OCR collaborator.
// The service itself lives outside this repository; the core only ever sees the
// structured result it returns for each uploaded file.
package extraction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Result holds the structured fields extracted from one file. Every field is
// optional; a failed or low-quality extraction simply contributes fewer
// candidate values to the aggregation step, never an error that aborts a batch.
type Result struct {
	FileID         uuid.UUID        `json:"file_id"`
	DocType        string           `json:"doc_type"`
	Amount         *decimal.Decimal `json:"amount"`
	VatAmount      *decimal.Decimal `json:"vat_amount"`
	ContactName    string           `json:"contact_name"`
	TaxID          string           `json:"tax_id"`
	DocumentDate   string           `json:"document_date"` // YYYY-MM-DD as reported by the extractor
	DocumentNumber string           `json:"document_number"`
	Description    string           `json:"description"`
	Confidence     float64          `json:"confidence"` // 0..1
	Error          string           `json:"error"`      // non-empty when extraction failed for this file
}

// Failed reports whether this file's extraction failed. A failed result carries
// no candidate values.
func (r Result) Failed() bool {
	return r.Error != ""
}

// ParseDate parses the extractor's date string. Returns nil when absent or malformed.
func (r Result) ParseDate() *time.Time {
	if r.DocumentDate == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", r.DocumentDate)
	if err != nil {
		return nil
	}
	return &t
}
