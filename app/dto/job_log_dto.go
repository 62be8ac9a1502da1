package dto

import (
	"encoding/json"
	"time"
)

// ListJobLogsRequest represents query parameters for execution history listing
type ListJobLogsRequest struct {
	ScheduledJobID *uint      `query:"scheduled_job_id" validate:"omitempty"`
	JobClass       string     `query:"job_class" validate:"omitempty"`
	Status         string     `query:"status" validate:"omitempty,oneof=running success failed"`
	DateFrom       *time.Time `query:"date_from" validate:"omitempty"`
	DateTo         *time.Time `query:"date_to" validate:"omitempty"`
	Page           int        `query:"page" validate:"omitempty,min=1"`
	Limit          int        `query:"limit" validate:"omitempty,min=1,max=100"`
}

// JobLogInfo represents one execution record in API responses
type JobLogInfo struct {
	ID              uint            `json:"id" example:"42"`
	ScheduledJobID  uint            `json:"scheduled_job_id" example:"1"`
	JobName         string          `json:"job_name" example:"task-reminder-hourly"`
	JobClass        string          `json:"job_class" example:"task_reminder"`
	Status          string          `json:"status" example:"success"`
	Message         string          `json:"message,omitempty" example:"processed 3 tasks, sent 12 reminders"`
	Output          string          `json:"output,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	CorrelationID   string          `json:"correlation_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	ExecutionTimeMs *int64          `json:"execution_time_ms,omitempty" example:"1250"`
}

// ListJobLogsResponse represents a page of execution records
type ListJobLogsResponse struct {
	Logs       []JobLogInfo   `json:"logs"`
	Pagination PaginationInfo `json:"pagination"`
}

// ClearJobLogsRequest represents the request to purge a job's history
type ClearJobLogsRequest struct {
	ScheduledJobID uint `json:"scheduled_job_id" validate:"required" example:"1"`
}

// ClearJobLogsResponse reports how many records were removed
type ClearJobLogsResponse struct {
	Deleted int64 `json:"deleted" example:"120"`
}
