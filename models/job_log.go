package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job log status constants. Transitions: running -> success | failed.
// Terminal rows are never mutated afterward.
const (
	JobLogStatusRunning = "running"
	JobLogStatusSuccess = "success"
	JobLogStatusFailed  = "failed"
)

// JobLog is the immutable audit record of one execution attempt of a
// scheduled job. Job name and class are denormalized so history survives
// later edits to the job definition.
// Table: job_logs
type JobLog struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ScheduledJobID  uint            `gorm:"not null;index:idx_job_logs_scheduled_job_id" json:"scheduled_job_id"`
	JobName         string          `gorm:"size:255;not null" json:"job_name"`
	JobClass        JobClass        `gorm:"size:64;not null;index:idx_job_logs_job_class" json:"job_class"`
	CorrelationID   uuid.UUID       `gorm:"type:uuid;index:idx_job_logs_correlation_id;not null" json:"correlation_id"`
	Status          string          `gorm:"size:16;not null;index:idx_job_logs_status" json:"status"`
	Message         *string         `gorm:"type:text" json:"message,omitempty"`
	Output          *string         `gorm:"type:text" json:"output,omitempty"`
	Error           *string         `gorm:"type:text" json:"error,omitempty"`
	Metadata        json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	StartedAt       time.Time       `gorm:"not null;index:idx_job_logs_started_at" json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	ExecutionTimeMs *int64          `json:"execution_time_ms,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	ScheduledJob *ScheduledJob `gorm:"foreignKey:ScheduledJobID;references:ID" json:"scheduled_job,omitempty"`
}

func (JobLog) TableName() string { return "job_logs" }

// IsTerminal reports whether the log row reached a final status
func (l *JobLog) IsTerminal() bool {
	return l.Status == JobLogStatusSuccess || l.Status == JobLogStatusFailed
}

// JobLogFilter represents filter criteria for job log queries
type JobLogFilter struct {
	ID             *uint
	ScheduledJobID *uint
	JobClass       *JobClass
	Status         *string
	DateFrom       *time.Time
	DateTo         *time.Time
}
