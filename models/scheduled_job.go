// Package models contains domain entities and business models for the LMS platform
package models

import (
	"encoding/json"
	"time"
)

// JobClass discriminates which handler runs for a scheduled job
type JobClass string

const (
	JobClassTaskReminder      JobClass = "task_reminder"
	JobClassVoucherGeneration JobClass = "voucher_generation"
	JobClassVoucherOverdue    JobClass = "voucher_overdue_notification"
	JobClassVoucherAutoBlock  JobClass = "voucher_auto_block"
)

// ScheduleType enumerates supported recurrence rules
type ScheduleType string

const (
	ScheduleTypeHourly     ScheduleType = "hourly"
	ScheduleTypeDaily      ScheduleType = "daily"
	ScheduleTypeTwiceDaily ScheduleType = "twice_daily"
	ScheduleTypeWeekly     ScheduleType = "weekly"
	ScheduleTypeMonthly    ScheduleType = "monthly"
	ScheduleTypeCustom     ScheduleType = "custom"
)

// ValidJobClasses lists every job class a scheduled job may reference
var ValidJobClasses = []JobClass{
	JobClassTaskReminder,
	JobClassVoucherGeneration,
	JobClassVoucherOverdue,
	JobClassVoucherAutoBlock,
}

// ValidScheduleTypes lists every supported schedule type
var ValidScheduleTypes = []ScheduleType{
	ScheduleTypeHourly,
	ScheduleTypeDaily,
	ScheduleTypeTwiceDaily,
	ScheduleTypeWeekly,
	ScheduleTypeMonthly,
	ScheduleTypeCustom,
}

// ScheduleConfig holds structured parameters for custom schedules and
// optional overrides for the built-in ones
type ScheduleConfig struct {
	// TimeOfDay pins daily runs to a wall-clock time, "15:04" format
	TimeOfDay string `json:"time_of_day,omitempty"`
	// DayOfMonth overrides the anchor day for monthly schedules (1-31)
	DayOfMonth int `json:"day_of_month,omitempty"`
	// IntervalMinutes runs a custom schedule every N minutes
	IntervalMinutes int `json:"interval_minutes,omitempty"`
	// Times is a list of "15:04" times for custom schedules
	Times []string `json:"times,omitempty"`
	// Cron is a standard 5-field cron expression for custom schedules
	Cron string `json:"cron,omitempty"`
}

// ScheduledJob represents a recurring job definition
// Table: scheduled_jobs
// Invariant: next_run_at is strictly in the future right after a run
// completes (success or failure) unless the job is disabled
type ScheduledJob struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:255;not null;uniqueIndex:uk_scheduled_jobs_name" json:"name"`
	Description    *string         `gorm:"type:text" json:"description,omitempty"`
	JobClass       JobClass        `gorm:"size:64;not null;index:idx_scheduled_jobs_job_class" json:"job_class"`
	ScheduleType   ScheduleType    `gorm:"size:32;not null" json:"schedule_type"`
	ScheduleConfig json.RawMessage `gorm:"type:jsonb" json:"schedule_config,omitempty"`
	Enabled        *bool           `gorm:"default:true;index:idx_scheduled_jobs_enabled" json:"enabled"`
	LastRunAt      *time.Time      `json:"last_run_at,omitempty"`
	NextRunAt      *time.Time      `gorm:"index:idx_scheduled_jobs_next_run_at" json:"next_run_at,omitempty"`
	Metadata       json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Logs []JobLog `gorm:"foreignKey:ScheduledJobID" json:"-"`
}

func (ScheduledJob) TableName() string { return "scheduled_jobs" }

// IsEnabled reports whether the job participates in dispatching
func (j *ScheduledJob) IsEnabled() bool {
	return j.Enabled != nil && *j.Enabled
}

// IsDue reports whether the job should run at the given instant
func (j *ScheduledJob) IsDue(now time.Time) bool {
	if !j.IsEnabled() {
		return false
	}
	return j.NextRunAt == nil || !j.NextRunAt.After(now)
}

// Config decodes ScheduleConfig; a nil/empty column yields the zero config
func (j *ScheduledJob) Config() (ScheduleConfig, error) {
	var cfg ScheduleConfig
	if len(j.ScheduleConfig) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(j.ScheduleConfig, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// IsValidJobClass reports whether the given class has a registered meaning
func IsValidJobClass(c JobClass) bool {
	for _, v := range ValidJobClasses {
		if v == c {
			return true
		}
	}
	return false
}

// IsValidScheduleType reports whether the given type is supported
func IsValidScheduleType(t ScheduleType) bool {
	for _, v := range ValidScheduleTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ScheduledJobFilter represents filter criteria for scheduled job queries
type ScheduledJobFilter struct {
	ID            *uint
	Name          *string
	JobClass      *JobClass
	ScheduleType  *ScheduleType
	Enabled       *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
