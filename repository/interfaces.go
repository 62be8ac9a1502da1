// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
)

// ScheduledJobRepository defines operations for the job registry
type ScheduledJobRepository interface {
	ByID(ctx context.Context, id uint) (*models.ScheduledJob, error)
	ByName(ctx context.Context, name string) (*models.ScheduledJob, error)
	List(ctx context.Context, filter models.ScheduledJobFilter, limit, offset int) ([]*models.ScheduledJob, error)
	Count(ctx context.Context, filter models.ScheduledJobFilter) (int64, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledJob, error)
	// ClaimDueJob atomically advances next_run_at for a still-due job.
	// Returns false when another dispatcher already claimed the row.
	ClaimDueJob(ctx context.Context, jobID uint, now, nextRunAt time.Time) (bool, error)
	Save(ctx context.Context, job *models.ScheduledJob) error
	Update(ctx context.Context, job *models.ScheduledJob) error
	UpdateRunTimes(ctx context.Context, jobID uint, lastRunAt time.Time, nextRunAt time.Time) error
	UpdateMetadata(ctx context.Context, jobID uint, metadata json.RawMessage) error
	Delete(ctx context.Context, jobID uint) error
}

// JobLogRepository defines operations for the execution audit trail
type JobLogRepository interface {
	ByID(ctx context.Context, id uint) (*models.JobLog, error)
	Save(ctx context.Context, log *models.JobLog) error
	Update(ctx context.Context, log *models.JobLog) error
	ListByJob(ctx context.Context, filter models.JobLogFilter, limit, offset int) ([]*models.JobLog, error)
	CountByJob(ctx context.Context, filter models.JobLogFilter) (int64, error)
	HasLogs(ctx context.Context, scheduledJobID uint) (bool, error)
	DeleteByJob(ctx context.Context, scheduledJobID uint) (int64, error)
}

// TaskReminderLogRepository defines operations for the reminder idempotency ledger
type TaskReminderLogRepository interface {
	Exists(ctx context.Context, taskID, studentID uint, reminderType string) (bool, error)
	Save(ctx context.Context, log *models.TaskReminderLog) error
	CountByTask(ctx context.Context, taskID uint) (int64, error)
}

// VoucherRepository defines operations for fee vouchers
type VoucherRepository interface {
	ByID(ctx context.Context, id uint) (*models.Voucher, error)
	ExistsForMonth(ctx context.Context, studentID uint, year int, month time.Month) (bool, error)
	ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Voucher, error)
	Save(ctx context.Context, voucher *models.Voucher) error
	Update(ctx context.Context, voucher *models.Voucher) error
}

// StudentRepository defines operations for students consumed by the job engine
type StudentRepository interface {
	ByID(ctx context.Context, id uint) (*models.Student, error)
	ListActiveByPromiseDay(ctx context.Context, day int) ([]*models.Student, error)
	ListActiveByBatch(ctx context.Context, batchID uint) ([]*models.Student, error)
	Block(ctx context.Context, studentID uint, reason string, at time.Time) error
}

// TaskRepository defines read operations for tasks and submissions
type TaskRepository interface {
	ByID(ctx context.Context, id uint) (*models.Task, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error)
	SubmittedStudentIDs(ctx context.Context, taskID uint) (map[uint]struct{}, error)
}

// NotificationRepository defines operations for persisted UI notifications
type NotificationRepository interface {
	Save(ctx context.Context, n *models.Notification) error
	ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]*models.Notification, error)
}

// QueuedEmailRepository defines operations for the durable email queue
type QueuedEmailRepository interface {
	Save(ctx context.Context, email *models.QueuedEmail) error
	ListQueued(ctx context.Context, limit int) ([]*models.QueuedEmail, error)
	Update(ctx context.Context, email *models.QueuedEmail) error
}

// AdminRepository defines operations for platform administrators
type AdminRepository interface {
	ByID(ctx context.Context, id uint) (*models.Admin, error)
	ByEmail(ctx context.Context, email string) (*models.Admin, error)
	Save(ctx context.Context, admin *models.Admin) error
	UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error
}
