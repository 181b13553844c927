package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocType enum constants (closed set)
const (
	DocTypeTaxInvoice    = "TAX_INVOICE"
	DocTypeTaxInvoiceAbb = "TAX_INVOICE_ABB" // abbreviated tax invoice
	DocTypeInvoice       = "INVOICE"
	DocTypeReceipt       = "RECEIPT"
	DocTypeCashReceipt   = "CASH_RECEIPT"
	DocTypeSlipTransfer  = "SLIP_TRANSFER"
	DocTypeSlipCheque    = "SLIP_CHEQUE"
	DocTypeBankStatement = "BANK_STATEMENT" // bank or credit card statement
	DocTypeWhtSent       = "WHT_SENT"
	DocTypeWhtReceived   = "WHT_RECEIVED"
	DocTypeOther         = "OTHER"
)

// Document groups the files of one logical document inside a Box.
// DocType is immutable once at least one File is attached (service-enforced).
type Document struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BoxID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"box_id"`
	DocType   string         `gorm:"type:varchar(30);not null;index" json:"doc_type"`
	Files     []File         `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// File is one uploaded binary's metadata plus its extraction outcome.
// The bytes themselves live in external storage; the core only sees metadata.
type File struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	MimeType   string    `gorm:"type:varchar(100)" json:"mime_type"`
	Checksum   string    `gorm:"type:varchar(128);index" json:"checksum"`
	SizeBytes  int64     `gorm:"default:0" json:"size_bytes"`

	// Extraction outcome (per-file, non-fatal on failure)
	ExtractedFields    string    `gorm:"type:jsonb" json:"extracted_fields"` // raw field snapshot from the extraction service
	ExtractConfidence  float64   `gorm:"default:0" json:"extract_confidence"`
	ExtractError       string    `gorm:"type:text" json:"extract_error"` // non-empty when extraction failed for this file
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
