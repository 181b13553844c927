package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WhtType enum constants
const (
	WhtTypeOutgoing = "OUTGOING" // we owe a certificate to a vendor
	WhtTypeIncoming = "INCOMING" // we await a certificate from a customer
)

// WhtStatus enum constants.
// OUTGOING: PENDING -> ISSUED -> SENT -> CONFIRMED (CANCELLED from any non-terminal)
// INCOMING: PENDING -> RECEIVED (CANCELLED from PENDING)
const (
	WhtStatusPending   = "PENDING"
	WhtStatusIssued    = "ISSUED"
	WhtStatusSent      = "SENT"
	WhtStatusConfirmed = "CONFIRMED"
	WhtStatusReceived  = "RECEIVED"
	WhtStatusCancelled = "CANCELLED"
)

// WhtTracking is one withholding-tax certificate obligation. A Box may carry
// zero, one, or many of these; the box-level HasWht flag is configuration and
// stays independent of how many records exist or what state they are in.
type WhtTracking struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BoxID  uuid.UUID `gorm:"type:uuid;not null;index" json:"box_id"`
	Type   string    `gorm:"type:varchar(10);not null" json:"type"` // OUTGOING, INCOMING
	Status string    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	WhtAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"wht_amount"`
	WhtRate   decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"wht_rate"` // e.g. 3 = 3%

	ContactID   *uuid.UUID `gorm:"type:uuid;index" json:"contact_id"`
	Contact     *Contact   `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	ContactName string     `gorm:"type:varchar(255)" json:"contact_name"` // free text when no Contact record exists

	// One timestamp per forward transition, stamped at transition time
	IssuedDate    *time.Time `json:"issued_date"`
	SentDate      *time.Time `json:"sent_date"`
	ConfirmedDate *time.Time `json:"confirmed_date"`
	ReceivedDate  *time.Time `json:"received_date"`
	CancelledDate *time.Time `json:"cancelled_date"`

	Note      string    `gorm:"type:text" json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
