package models

import (
	"time"
)

// Reminder type constants
const (
	ReminderTypeDeadline24h = "deadline_24h"
)

// TaskReminderLog is the idempotency ledger for reminder delivery.
// At most one row may ever exist per (task_id, student_id, reminder_type);
// the existence of a row means "do not resend".
// Table: task_reminder_logs
type TaskReminderLog struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TaskID       uint   `gorm:"not null;uniqueIndex:uk_task_reminder_logs_key" json:"task_id"`
	StudentID    uint   `gorm:"not null;uniqueIndex:uk_task_reminder_logs_key;index:idx_task_reminder_logs_student_id" json:"student_id"`
	ReminderType string `gorm:"size:64;not null;uniqueIndex:uk_task_reminder_logs_key" json:"reminder_type"`

	ReminderSentAt   time.Time `gorm:"not null" json:"reminder_sent_at"`
	NotificationSent *bool     `gorm:"default:false" json:"notification_sent"`
	EmailSent        *bool     `gorm:"default:false" json:"email_sent"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Task    *Task    `gorm:"foreignKey:TaskID;references:ID" json:"-"`
	Student *Student `gorm:"foreignKey:StudentID;references:ID" json:"-"`
}

func (TaskReminderLog) TableName() string { return "task_reminder_logs" }

// TaskReminderLogFilter represents filter criteria for reminder ledger queries
type TaskReminderLogFilter struct {
	ID           *uint
	TaskID       *uint
	StudentID    *uint
	ReminderType *string
}
