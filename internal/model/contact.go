package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactKind enum constants
const (
	ContactKindVendor   = "VENDOR"
	ContactKindCustomer = "CUSTOMER"
	ContactKindEmployee = "EMPLOYEE"
)

// Contact is a counterpart (vendor, customer, or reimbursed employee) referenced
// by boxes and WHT certificate obligations, and matched on by the inbox matcher.
type Contact struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null;index" json:"name"`
	Kind      string         `gorm:"type:varchar(20);not null;index" json:"kind"` // VENDOR, CUSTOMER, EMPLOYEE
	TaxID     string         `gorm:"type:varchar(50);index" json:"tax_id"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
