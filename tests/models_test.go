// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledJobIsDue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("NilNextRunAtIsDue", func(t *testing.T) {
		job := &models.ScheduledJob{Enabled: utils.ToPtr(true)}
		assert.True(t, job.IsDue(now))
	})

	t.Run("PastNextRunAtIsDue", func(t *testing.T) {
		past := now.Add(-time.Minute)
		job := &models.ScheduledJob{Enabled: utils.ToPtr(true), NextRunAt: &past}
		assert.True(t, job.IsDue(now))
	})

	t.Run("ExactNextRunAtIsDue", func(t *testing.T) {
		job := &models.ScheduledJob{Enabled: utils.ToPtr(true), NextRunAt: &now}
		assert.True(t, job.IsDue(now))
	})

	t.Run("FutureNextRunAtIsNotDue", func(t *testing.T) {
		future := now.Add(time.Minute)
		job := &models.ScheduledJob{Enabled: utils.ToPtr(true), NextRunAt: &future}
		assert.False(t, job.IsDue(now))
	})

	t.Run("DisabledJobIsNeverDue", func(t *testing.T) {
		past := now.Add(-time.Hour)
		job := &models.ScheduledJob{Enabled: utils.ToPtr(false), NextRunAt: &past}
		assert.False(t, job.IsDue(now))
	})

	t.Run("NilEnabledIsNeverDue", func(t *testing.T) {
		job := &models.ScheduledJob{}
		assert.False(t, job.IsDue(now))
	})
}

func TestScheduledJobConfig(t *testing.T) {
	t.Run("EmptyColumnYieldsZeroConfig", func(t *testing.T) {
		job := &models.ScheduledJob{}
		cfg, err := job.Config()
		require.NoError(t, err)
		assert.Equal(t, models.ScheduleConfig{}, cfg)
	})

	t.Run("DecodesStoredJSON", func(t *testing.T) {
		job := &models.ScheduledJob{
			ScheduleConfig: json.RawMessage(`{"time_of_day":"06:30","day_of_month":15}`),
		}
		cfg, err := job.Config()
		require.NoError(t, err)
		assert.Equal(t, "06:30", cfg.TimeOfDay)
		assert.Equal(t, 15, cfg.DayOfMonth)
	})

	t.Run("MalformedJSONFails", func(t *testing.T) {
		job := &models.ScheduledJob{ScheduleConfig: json.RawMessage(`{"cron":`)}
		_, err := job.Config()
		assert.Error(t, err)
	})
}

func TestValidJobClassesAndScheduleTypes(t *testing.T) {
	for _, class := range models.ValidJobClasses {
		assert.True(t, models.IsValidJobClass(class), "class %s", class)
	}
	assert.False(t, models.IsValidJobClass(models.JobClass("report_generation")))

	for _, st := range models.ValidScheduleTypes {
		assert.True(t, models.IsValidScheduleType(st), "type %s", st)
	}
	assert.False(t, models.IsValidScheduleType(models.ScheduleType("yearly")))
}

func TestJobLogIsTerminal(t *testing.T) {
	assert.False(t, (&models.JobLog{Status: models.JobLogStatusRunning}).IsTerminal())
	assert.True(t, (&models.JobLog{Status: models.JobLogStatusSuccess}).IsTerminal())
	assert.True(t, (&models.JobLog{Status: models.JobLogStatusFailed}).IsTerminal())
}

func TestVoucherIsPending(t *testing.T) {
	assert.True(t, (&models.Voucher{Status: models.VoucherStatusPending}).IsPending())
	assert.False(t, (&models.Voucher{Status: models.VoucherStatusSubmitted}).IsPending())
	assert.False(t, (&models.Voucher{Status: models.VoucherStatusApproved}).IsPending())
	assert.False(t, (&models.Voucher{Status: models.VoucherStatusRejected}).IsPending())
}

func TestVoucherOverdueDays(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	voucher := &models.Voucher{DueDate: due}

	assert.Equal(t, 0, voucher.OverdueDays(due))
	assert.Equal(t, 5, voucher.OverdueDays(due.AddDate(0, 0, 5)))
	assert.LessOrEqual(t, voucher.OverdueDays(due.AddDate(0, 0, -3)), 0)
}

func TestStudentFlags(t *testing.T) {
	t.Run("Blocked", func(t *testing.T) {
		assert.False(t, (&models.Student{}).IsBlockedNow())
		assert.False(t, (&models.Student{IsBlocked: utils.ToPtr(false)}).IsBlockedNow())
		assert.True(t, (&models.Student{IsBlocked: utils.ToPtr(true)}).IsBlockedNow())
	})

	t.Run("Active", func(t *testing.T) {
		assert.False(t, (&models.Student{}).IsActiveNow())
		assert.True(t, (&models.Student{IsActive: utils.ToPtr(true)}).IsActiveNow())
	})
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "scheduled_jobs", models.ScheduledJob{}.TableName())
	assert.Equal(t, "job_logs", models.JobLog{}.TableName())
	assert.Equal(t, "task_reminder_logs", models.TaskReminderLog{}.TableName())
	assert.Equal(t, "vouchers", models.Voucher{}.TableName())
	assert.Equal(t, "students", models.Student{}.TableName())
	assert.Equal(t, "tasks", models.Task{}.TableName())
	assert.Equal(t, "submitted_tasks", models.SubmittedTask{}.TableName())
	assert.Equal(t, "batches", models.Batch{}.TableName())
	assert.Equal(t, "notifications", models.Notification{}.TableName())
	assert.Equal(t, "queued_emails", models.QueuedEmail{}.TableName())
	assert.Equal(t, "admins", models.Admin{}.TableName())
}
