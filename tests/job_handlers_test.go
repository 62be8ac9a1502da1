package tests

import (
	"log"
	"testing"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/scheduler"
	"github.com/RehanRiaz5383/lms-v2-sub002/app/services"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	testingutil "github.com/RehanRiaz5383/lms-v2-sub002/testing"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, testDB *testingutil.TestDB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.DB.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestTaskReminderJobIdempotency(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		// Pinned early in the hour so a later run stays in the same window
		now := utils.StartOfHour(utils.UTCNow()).Add(5 * time.Minute)

		notifier := services.NewNotificationSink(repository.NewNotificationRepository(testDB.DB))
		emails := services.NewEmailQueue(repository.NewQueuedEmailRepository(testDB.DB), nil)
		job := scheduler.NewTaskReminderJob(
			repository.NewTaskRepository(testDB.DB),
			repository.NewStudentRepository(testDB.DB),
			repository.NewTaskReminderLogRepository(testDB.DB),
			notifier,
			emails,
			testDB.DB,
			24,
		)

		batch, err := fixtures.CreateTestBatch()
		require.NoError(t, err)
		pending, err := fixtures.CreateTestStudent(batch.ID, 5)
		require.NoError(t, err)
		second, err := fixtures.CreateTestStudent(batch.ID, 5)
		require.NoError(t, err)
		submitted, err := fixtures.CreateTestStudent(batch.ID, 5)
		require.NoError(t, err)

		// Deadline inside the one-hour window 24 hours out
		expiry := utils.StartOfHour(now).Add(24*time.Hour + 30*time.Minute)
		task, err := fixtures.CreateTestTask(batch.ID, expiry)
		require.NoError(t, err)
		_, err = fixtures.CreateTestSubmission(task.ID, submitted.ID)
		require.NoError(t, err)

		t.Run("FirstRunRemindsOnlyNonSubmitters", func(t *testing.T) {
			rc := scheduler.NewRunContext(now, log.Default())
			require.NoError(t, job.Run(ctx, rc))

			assert.Equal(t, 1, rc.Count("tasks_processed"))
			assert.Equal(t, 2, rc.Count("notifications_sent"))
			assert.Equal(t, 2, rc.Count("emails_sent"))
			assert.Equal(t, 0, rc.Count("reminders_skipped"))

			assert.EqualValues(t, 2, countRows(t, testDB, &models.TaskReminderLog{}, "task_id = ?", task.ID))
			assert.EqualValues(t, 0, countRows(t, testDB, &models.TaskReminderLog{}, "student_id = ?", submitted.ID))
			assert.EqualValues(t, 2, countRows(t, testDB, &models.Notification{}, "type = ?", models.NotificationTypeTaskReminder))
			assert.EqualValues(t, 1, countRows(t, testDB, &models.QueuedEmail{}, "to_email = ?", pending.Email))
			assert.EqualValues(t, 1, countRows(t, testDB, &models.QueuedEmail{}, "to_email = ?", second.Email))
		})

		t.Run("SecondRunInsideSameWindowIsANoOp", func(t *testing.T) {
			rc := scheduler.NewRunContext(now.Add(10*time.Minute), log.Default())
			require.NoError(t, job.Run(ctx, rc))

			assert.Equal(t, 0, rc.Count("notifications_sent"))
			assert.Equal(t, 2, rc.Count("reminders_skipped"))

			assert.EqualValues(t, 2, countRows(t, testDB, &models.TaskReminderLog{}, "task_id = ?", task.ID))
			assert.EqualValues(t, 2, countRows(t, testDB, &models.Notification{}, "type = ?", models.NotificationTypeTaskReminder))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVoucherGenerationJobIdempotency(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		// Pinned to midday so the second run resolves the same target date
		now := utils.StartOfDay(utils.UTCNow()).Add(12 * time.Hour)

		leadDays := 10
		targetDate := now.AddDate(0, 0, leadDays)

		voucherRepo := repository.NewVoucherRepository(testDB.DB)
		notifier := services.NewNotificationSink(repository.NewNotificationRepository(testDB.DB))
		job := scheduler.NewVoucherGenerationJob(
			repository.NewStudentRepository(testDB.DB),
			voucherRepo,
			notifier,
			testDB.DB,
			leadDays,
		)

		batch, err := fixtures.CreateTestBatch()
		require.NoError(t, err)
		student, err := fixtures.CreateTestStudent(batch.ID, targetDate.Day())
		require.NoError(t, err)
		// A different promise day never matches the target date
		otherDay := targetDate.AddDate(0, 0, 3).Day()
		_, err = fixtures.CreateTestStudent(batch.ID, otherDay)
		require.NoError(t, err)

		t.Run("FirstRunIssuesOneVoucher", func(t *testing.T) {
			rc := scheduler.NewRunContext(now, log.Default())
			require.NoError(t, job.Run(ctx, rc))

			assert.Equal(t, 1, rc.Count("students_processed"))
			assert.Equal(t, 1, rc.Count("vouchers_generated"))
			assert.Equal(t, 0, rc.Count("vouchers_skipped"))

			exists, err := voucherRepo.ExistsForMonth(ctx, student.ID, targetDate.Year(), targetDate.Month())
			require.NoError(t, err)
			assert.True(t, exists)
			assert.EqualValues(t, 1, countRows(t, testDB, &models.Voucher{}, "student_id = ?", student.ID))
			assert.EqualValues(t, 1, countRows(t, testDB, &models.Notification{}, "type = ?", models.NotificationTypeVoucherGenerated))
		})

		t.Run("SecondRunSkipsTheExistingVoucher", func(t *testing.T) {
			rc := scheduler.NewRunContext(now.Add(time.Hour), log.Default())
			require.NoError(t, job.Run(ctx, rc))

			assert.Equal(t, 0, rc.Count("vouchers_generated"))
			assert.Equal(t, 1, rc.Count("vouchers_skipped"))

			assert.EqualValues(t, 1, countRows(t, testDB, &models.Voucher{}, "student_id = ?", student.ID))
			assert.EqualValues(t, 1, countRows(t, testDB, &models.Notification{}, "type = ?", models.NotificationTypeVoucherGenerated))
		})

		return nil
	})
	require.NoError(t, err)
}

// The overdue job intentionally keeps no ledger: students are nagged on
// every run until the voucher leaves the pending state.
func TestVoucherOverdueJobRenotifiesEveryRun(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		notifier := services.NewNotificationSink(repository.NewNotificationRepository(testDB.DB))
		job := scheduler.NewVoucherOverdueJob(repository.NewVoucherRepository(testDB.DB), notifier)

		batch, err := fixtures.CreateTestBatch()
		require.NoError(t, err)
		student, err := fixtures.CreateTestStudent(batch.ID, 5)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVoucher(student.ID, now.AddDate(0, 0, -5), models.VoucherStatusPending)
		require.NoError(t, err)
		// Settled vouchers are never overdue
		settled, err := fixtures.CreateTestStudent(batch.ID, 5)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVoucher(settled.ID, now.AddDate(0, 0, -5), models.VoucherStatusApproved)
		require.NoError(t, err)

		for run := 1; run <= 2; run++ {
			rc := scheduler.NewRunContext(now, log.Default())
			require.NoError(t, job.Run(ctx, rc))
			assert.Equal(t, 1, rc.Count("vouchers_seen"), "run %d", run)
			assert.Equal(t, 1, rc.Count("notifications_sent"), "run %d", run)
		}

		assert.EqualValues(t, 2, countRows(t, testDB, &models.Notification{}, "type = ?", models.NotificationTypeVoucherOverdue))
		return nil
	})
	require.NoError(t, err)
}

func TestVoucherAutoBlockJobIdempotency(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		studentRepo := repository.NewStudentRepository(testDB.DB)
		notifier := services.NewNotificationSink(repository.NewNotificationRepository(testDB.DB))
		job := scheduler.NewVoucherAutoBlockJob(
			repository.NewVoucherRepository(testDB.DB),
			studentRepo,
			notifier,
			testDB.DB,
			3,
			"Fee voucher overdue by 3 or more days",
		)

		batch, err := fixtures.CreateTestBatch()
		require.NoError(t, err)
		overdue, err := fixtures.CreateTestStudent(batch.ID, 5)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVoucher(overdue.ID, now.AddDate(0, 0, -5), models.VoucherStatusPending)
		require.NoError(t, err)
		// One day overdue is still inside the grace period
		graced, err := fixtures.CreateTestStudent(batch.ID, 5)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVoucher(graced.ID, now.AddDate(0, 0, -1), models.VoucherStatusPending)
		require.NoError(t, err)

		t.Run("FirstRunBlocksTheOverdueStudent", func(t *testing.T) {
			rc := scheduler.NewRunContext(now, log.Default())
			require.NoError(t, job.Run(ctx, rc))

			assert.Equal(t, 1, rc.Count("students_blocked"))
			assert.Equal(t, 0, rc.Count("already_blocked"))

			blocked, err := studentRepo.ByID(ctx, overdue.ID)
			require.NoError(t, err)
			require.NotNil(t, blocked)
			assert.True(t, blocked.IsBlockedNow())
			assert.Equal(t, "Fee voucher overdue by 3 or more days", *blocked.BlockReason)
			require.NotNil(t, blocked.BlockedAt)

			inGrace, err := studentRepo.ByID(ctx, graced.ID)
			require.NoError(t, err)
			require.NotNil(t, inGrace)
			assert.False(t, inGrace.IsBlockedNow())
		})

		t.Run("SecondRunCountsAlreadyBlocked", func(t *testing.T) {
			rc := scheduler.NewRunContext(now.Add(time.Hour), log.Default())
			require.NoError(t, job.Run(ctx, rc))

			assert.Equal(t, 0, rc.Count("students_blocked"))
			assert.Equal(t, 1, rc.Count("already_blocked"))

			assert.EqualValues(t, 1, countRows(t, testDB, &models.Notification{}, "type = ?", models.NotificationTypeAccountBlocked))
		})

		return nil
	})
	require.NoError(t, err)
}

// A student carrying several overdue months shows up once per voucher in the
// dispatch; the block and its notification must still happen exactly once.
func TestVoucherAutoBlockJobBlocksOncePerStudent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		studentRepo := repository.NewStudentRepository(testDB.DB)
		notifier := services.NewNotificationSink(repository.NewNotificationRepository(testDB.DB))
		job := scheduler.NewVoucherAutoBlockJob(
			repository.NewVoucherRepository(testDB.DB),
			studentRepo,
			notifier,
			testDB.DB,
			3,
			"Fee voucher overdue by 3 or more days",
		)

		batch, err := fixtures.CreateTestBatch()
		require.NoError(t, err)
		student, err := fixtures.CreateTestStudent(batch.ID, 5)
		require.NoError(t, err)
		// Two unpaid months, both past the grace period
		_, err = fixtures.CreateTestVoucher(student.ID, now.AddDate(0, -1, -5), models.VoucherStatusPending)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVoucher(student.ID, now.AddDate(0, 0, -5), models.VoucherStatusPending)
		require.NoError(t, err)

		rc := scheduler.NewRunContext(now, log.Default())
		require.NoError(t, job.Run(ctx, rc))

		assert.Equal(t, 1, rc.Count("students_blocked"))
		assert.Equal(t, 1, rc.Count("already_blocked"))
		assert.EqualValues(t, 1, countRows(t, testDB, &models.Notification{},
			"type = ? AND student_id = ?", models.NotificationTypeAccountBlocked, student.ID))

		blocked, err := studentRepo.ByID(ctx, student.ID)
		require.NoError(t, err)
		require.NotNil(t, blocked)
		assert.True(t, blocked.IsBlockedNow())

		return nil
	})
	require.NoError(t, err)
}
