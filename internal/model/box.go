package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BoxType enum constants
const (
	BoxTypeExpense = "EXPENSE"
	BoxTypeIncome  = "INCOME"
)

// ExpenseType enum constants
const (
	ExpenseTypeStandard = "STANDARD" // has VAT invoice
	ExpenseTypeNoVat    = "NO_VAT"   // cash receipt only
	ExpenseTypeForeign  = "FOREIGN"  // foreign vendor, no local tax invoice
)

// BoxStatus enum constants (lifecycle)
const (
	BoxStatusDraft     = "DRAFT"
	BoxStatusPending   = "PENDING"
	BoxStatusNeedDocs  = "NEED_DOCS"
	BoxStatusCompleted = "COMPLETED"
	BoxStatusRejected  = "REJECTED" // terminal, audit history only
	BoxStatusVoid      = "VOID"     // terminal, audit history only
)

// PaymentStatus enum constants
const (
	PaymentStatusUnpaid   = "UNPAID"
	PaymentStatusPartial  = "PARTIAL"
	PaymentStatusPaid     = "PAID"
	PaymentStatusOverpaid = "OVERPAID"
)

// VatDocStatus enum constants
const (
	VatDocPending  = "PENDING"
	VatDocVerified = "VERIFIED"
	VatDocNA       = "NA"
)

// WhtDocStatus enum constants
const (
	WhtDocPending   = "PENDING"
	WhtDocRequested = "REQUESTED" // certificate asked for but not yet in hand
	WhtDocReceived  = "RECEIVED"
	WhtDocNA        = "NA"
)

// ReimbursementStatus enum constants (only meaningful when PaidByEmployee)
const (
	ReimbursePending = "PENDING"
	ReimburseDone    = "REIMBURSED"
)

// Box bundles one transaction's documents, payments, and tax obligations.
// PaidAmount is a cached projection of the non-voided Payment rows; it is only
// ever written by the payment service's re-sum path, never incremented in place.
type Box struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BoxType     string    `gorm:"type:varchar(10);not null;index" json:"box_type"` // EXPENSE, INCOME
	ExpenseType *string   `gorm:"type:varchar(10)" json:"expense_type"`            // STANDARD, NO_VAT, FOREIGN; nil until set

	// Tax configuration
	HasVat  bool            `gorm:"default:false" json:"has_vat"`
	HasWht  bool            `gorm:"default:false" json:"has_wht"`
	WhtRate decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"wht_rate"` // percentage, meaningful only if has_wht

	// Amounts
	TotalAmount       decimal.Decimal  `gorm:"type:decimal(18,2);default:0" json:"total_amount"`
	PaidAmount        decimal.Decimal  `gorm:"type:decimal(18,2);default:0" json:"paid_amount"` // derived, see comment above
	InstallmentCount  int              `gorm:"default:1" json:"installment_count"`
	InstallmentAmount *decimal.Decimal `gorm:"type:decimal(18,2)" json:"installment_amount"` // per-installment amount when count > 1

	// Lifecycle
	Status            string  `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	PaymentStatus     string  `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"payment_status"`
	VatDocStatus      string  `gorm:"type:varchar(20);not null;default:'PENDING'" json:"vat_doc_status"`
	WhtDocStatus      string  `gorm:"type:varchar(20);not null;default:'PENDING'" json:"wht_doc_status"`
	CompletionPercent int     `gorm:"default:0" json:"completion_percent"`
	PossibleDuplicate bool    `gorm:"default:false" json:"possible_duplicate"`
	DuplicateReason   string  `gorm:"type:text" json:"duplicate_reason"`
	NADocTypes        string  `gorm:"type:text" json:"na_doc_types"` // comma-joined requirement ids marked not-applicable

	// Employee advance / reimbursement
	PaidByEmployee      bool    `gorm:"default:false" json:"paid_by_employee"`
	ReimbursementStatus *string `gorm:"type:varchar(20)" json:"reimbursement_status"` // PENDING, REIMBURSED

	// Counterpart & extracted header fields
	ContactID      *uuid.UUID `gorm:"type:uuid;index" json:"contact_id"`
	Contact        *Contact   `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	ContactName    string     `gorm:"type:varchar(255)" json:"contact_name"`
	Description    string     `gorm:"type:text" json:"description"`
	DocumentDate   *time.Time `gorm:"type:date" json:"document_date"`
	DocumentNumber string     `gorm:"type:varchar(100)" json:"document_number"`

	Documents []Document `gorm:"foreignKey:BoxID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	Payments  []Payment  `gorm:"foreignKey:BoxID" json:"payments,omitempty"`

	CreatedBy   *uuid.UUID     `gorm:"type:uuid;index" json:"created_by"`
	SubmittedAt *time.Time     `json:"submitted_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
