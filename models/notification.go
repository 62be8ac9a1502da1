package models

import (
	"encoding/json"
	"time"
)

// Notification type constants emitted by the job engine
const (
	NotificationTypeTaskReminder     = "task_reminder"
	NotificationTypeVoucherGenerated = "voucher_generated"
	NotificationTypeVoucherOverdue   = "voucher_overdue"
	NotificationTypeAccountBlocked   = "account_auto_blocked"
)

// Notification is a UI notification persisted for a student
// Table: notifications
type Notification struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	StudentID uint            `gorm:"not null;index:idx_notifications_student_id" json:"student_id"`
	Type      string          `gorm:"size:64;not null;index:idx_notifications_type" json:"type"`
	Title     string          `gorm:"size:255;not null" json:"title"`
	Message   string          `gorm:"type:text;not null" json:"message"`
	Data      json.RawMessage `gorm:"type:jsonb" json:"data,omitempty"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_notifications_created_at" json:"created_at"`

	// Relations
	Student *Student `gorm:"foreignKey:StudentID;references:ID" json:"-"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationFilter represents filter criteria for notification queries
type NotificationFilter struct {
	ID            *uint
	StudentID     *uint
	Type          *string
	Unread        *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
