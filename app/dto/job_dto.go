// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"encoding/json"
	"time"
)

// CreateScheduledJobRequest represents the request payload for registering a job
type CreateScheduledJobRequest struct {
	Name         string          `json:"name" validate:"required,min=3,max=120" example:"task-reminder-hourly"`
	JobClass     string          `json:"job_class" validate:"required" example:"task_reminder"`
	ScheduleType string          `json:"schedule_type" validate:"required" example:"hourly"`
	Schedule     json.RawMessage `json:"schedule,omitempty" validate:"omitempty"`
	Description  string          `json:"description,omitempty" validate:"omitempty,max=500" example:"Reminds students 24h before task deadlines"`
	Enabled      *bool           `json:"enabled,omitempty" example:"true"`
}

// UpdateScheduledJobRequest represents the request payload for editing a job.
// Only non-nil fields are applied.
type UpdateScheduledJobRequest struct {
	Name         *string         `json:"name,omitempty" validate:"omitempty,min=3,max=120"`
	ScheduleType *string         `json:"schedule_type,omitempty"`
	Schedule     json.RawMessage `json:"schedule,omitempty"`
	Description  *string         `json:"description,omitempty" validate:"omitempty,max=500"`
	Enabled      *bool           `json:"enabled,omitempty"`
}

// ScheduledJobInfo represents one registered job in API responses
type ScheduledJobInfo struct {
	ID           uint            `json:"id" example:"1"`
	Name         string          `json:"name" example:"task-reminder-hourly"`
	JobClass     string          `json:"job_class" example:"task_reminder"`
	ScheduleType string          `json:"schedule_type" example:"hourly"`
	Schedule     json.RawMessage `json:"schedule,omitempty"`
	Description  string          `json:"description,omitempty"`
	Enabled      *bool           `json:"enabled" example:"true"`
	LastRunAt    *time.Time      `json:"last_run_at,omitempty"`
	NextRunAt    *time.Time      `json:"next_run_at,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ListScheduledJobsRequest represents query parameters for job listing
type ListScheduledJobsRequest struct {
	JobClass string `query:"job_class" validate:"omitempty"`
	Enabled  *bool  `query:"enabled" validate:"omitempty"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ListScheduledJobsResponse represents a page of registered jobs
type ListScheduledJobsResponse struct {
	Jobs       []ScheduledJobInfo `json:"jobs"`
	Pagination PaginationInfo     `json:"pagination"`
}

// Run statuses reported per job by a dispatch cycle
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
	RunStatusSkipped = "skipped"
)

// ExecutedJob represents one job a dispatch cycle touched
type ExecutedJob struct {
	ID     uint   `json:"id" example:"1"`
	Name   string `json:"name" example:"task-reminder-hourly"`
	Status string `json:"status" example:"success"`
}

// FailedJob represents one job whose run ended in an error
type FailedJob struct {
	ID    uint   `json:"id" example:"2"`
	Name  string `json:"name" example:"voucher-generation-daily"`
	Error string `json:"error" example:"list students by promise day: connection refused"`
}

// RunJobsSummary represents the outcome of one dispatch cycle
type RunJobsSummary struct {
	Executed  []ExecutedJob `json:"executed"`
	Errors    []FailedJob   `json:"errors,omitempty"`
	Total     int           `json:"total" example:"3"`
	Timestamp time.Time     `json:"timestamp" example:"2025-01-15T16:30:00Z"`
}
