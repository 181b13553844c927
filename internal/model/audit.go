package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateBox       = "CREATE_BOX"
	ActionUpdateBoxConfig = "UPDATE_BOX_CONFIG"
	ActionSubmitBox       = "SUBMIT_BOX"
	ActionReviewBox       = "REVIEW_BOX"
	ActionDeleteBox       = "DELETE_BOX"
	ActionAddFile         = "ADD_FILE"
	ActionRemoveFile      = "REMOVE_FILE"
	ActionRecordPayment   = "RECORD_PAYMENT"
	ActionVoidPayment     = "VOID_PAYMENT"
	ActionCreateWht       = "CREATE_WHT_TRACKING"
	ActionAdvanceWht      = "ADVANCE_WHT_TRACKING"
	ActionCancelWht       = "CANCEL_WHT_TRACKING"
	ActionCreateUser      = "CREATE_USER"
	ActionCreateContact   = "CREATE_CONTACT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
