package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enum constants
const (
	PaymentMethodTransfer = "TRANSFER"
	PaymentMethodCheque   = "CHEQUE"
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodOther    = "OTHER"
)

// Payment is one payment event against a Box. Payments are never deleted by
// requirement logic; a mistake is reversed by a compensating negative-amount
// record or flagged Voided; the box's paid total is always re-summed from these rows.
type Payment struct {
	ID     uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BoxID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"box_id"`
	Amount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"` // negative for a reversal
	Method string          `gorm:"type:varchar(20);not null;default:'TRANSFER'" json:"method"`

	PaidDate time.Time `gorm:"type:date;not null" json:"paid_date"`

	// Provenance: set when the payment was auto-created from a payment-proof upload
	SourceDocumentID *uuid.UUID `gorm:"type:uuid" json:"source_document_id"`
	SourceFileID     *uuid.UUID `gorm:"type:uuid" json:"source_file_id"`
	AutoCreated      bool       `gorm:"default:false" json:"auto_created"`

	Voided     bool   `gorm:"default:false;index" json:"voided"`
	VoidReason string `gorm:"type:text" json:"void_reason"`
	Note       string `gorm:"type:text" json:"note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
