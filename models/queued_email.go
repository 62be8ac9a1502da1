package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Queued email status constants
const (
	EmailStatusQueued = "queued"
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// QueuedEmail is a durable outbound email awaiting delivery by the email
// worker. Handlers treat a successful enqueue as "sent" for ledger
// purposes; actual delivery confirmation is not tracked.
// Table: queued_emails
type QueuedEmail struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	TrackingID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_queued_emails_tracking_id" json:"tracking_id"`
	ToEmail      string          `gorm:"size:255;not null" json:"to_email"`
	CcEmails     pq.StringArray  `gorm:"type:text[]" json:"cc_emails,omitempty"`
	Subject      string          `gorm:"size:255;not null" json:"subject"`
	Body         string          `gorm:"type:text;not null" json:"body"`
	TemplateData json.RawMessage `gorm:"type:jsonb" json:"template_data,omitempty"`

	Status   string  `gorm:"size:16;not null;default:'queued';index:idx_queued_emails_status" json:"status"`
	Attempts int     `gorm:"not null;default:0" json:"attempts"`
	Error    *string `gorm:"type:text" json:"error,omitempty"`

	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_queued_emails_created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (QueuedEmail) TableName() string { return "queued_emails" }

// QueuedEmailFilter represents filter criteria for email queue queries
type QueuedEmailFilter struct {
	ID      *uint
	ToEmail *string
	Status  *string
}
