package model

import (
	"time"

	"github.com/google/uuid"
)

// InboxDraft is one in-flight review of a batch of extracted files. The merged
// record is always recomputed from the stored extraction results, but the
// user's field overrides are persisted here so they survive every recompute
// until explicitly cleared.
type InboxDraft struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BoxType   string    `gorm:"type:varchar(10);not null" json:"box_type"`
	Results   string    `gorm:"type:jsonb" json:"results"`   // serialized per-file extraction results
	Overrides string    `gorm:"type:jsonb" json:"overrides"` // serialized user field overrides
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
