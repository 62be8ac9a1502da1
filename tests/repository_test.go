// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	testingutil "github.com/RehanRiaz5383/lms-v2-sub002/testing"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledJobRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewScheduledJobRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SaveAndByID", func(t *testing.T) {
			job, err := fixtures.CreateTestScheduledJob(models.JobClassTaskReminder, utils.UTCNow().Add(time.Hour))
			require.NoError(t, err)

			found, err := repo.ByID(ctx, job.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, job.Name, found.Name)
			assert.Equal(t, models.JobClassTaskReminder, found.JobClass)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			found, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByName", func(t *testing.T) {
			job, err := fixtures.CreateTestScheduledJob(models.JobClassVoucherGeneration, utils.UTCNow().Add(time.Hour))
			require.NoError(t, err)

			found, err := repo.ByName(ctx, job.Name)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, job.ID, found.ID)

			missing, err := repo.ByName(ctx, "no-such-job")
			assert.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("ListAndCountByFilter", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.CreateTestScheduledJob(models.JobClassTaskReminder, utils.UTCNow().Add(time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestScheduledJob(models.JobClassVoucherOverdue, utils.UTCNow().Add(time.Hour))
			require.NoError(t, err)

			class := models.JobClassTaskReminder
			jobs, err := repo.List(ctx, models.ScheduledJobFilter{JobClass: &class}, 10, 0)
			require.NoError(t, err)
			require.Len(t, jobs, 1)
			assert.Equal(t, class, jobs[0].JobClass)

			count, err := repo.Count(ctx, models.ScheduledJobFilter{})
			require.NoError(t, err)
			assert.EqualValues(t, 2, count)
		})

		t.Run("ListDue", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			now := utils.UTCNow()

			due, err := fixtures.CreateTestScheduledJob(models.JobClassTaskReminder, now.Add(-time.Minute))
			require.NoError(t, err)
			_, err = fixtures.CreateTestScheduledJob(models.JobClassVoucherOverdue, now.Add(time.Hour))
			require.NoError(t, err)

			disabled, err := fixtures.CreateTestScheduledJob(models.JobClassVoucherAutoBlock, now.Add(-time.Minute))
			require.NoError(t, err)
			disabled.Enabled = utils.ToPtr(false)
			require.NoError(t, repo.Update(ctx, disabled))

			jobs, err := repo.ListDue(ctx, now)
			require.NoError(t, err)
			require.Len(t, jobs, 1)
			assert.Equal(t, due.ID, jobs[0].ID)
		})

		t.Run("ClaimDueJob", func(t *testing.T) {
			now := utils.UTCNow()
			job, err := fixtures.CreateTestScheduledJob(models.JobClassTaskReminder, now.Add(-time.Minute))
			require.NoError(t, err)
			next := now.Add(time.Hour)

			claimed, err := repo.ClaimDueJob(ctx, job.ID, now, next)
			require.NoError(t, err)
			assert.True(t, claimed)

			// The first claim advanced next_run_at; a second claim at the
			// same instant must lose
			claimed, err = repo.ClaimDueJob(ctx, job.ID, now, next.Add(time.Hour))
			require.NoError(t, err)
			assert.False(t, claimed)

			reloaded, err := repo.ByID(ctx, job.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded.NextRunAt)
			assert.WithinDuration(t, next, *reloaded.NextRunAt, time.Second)
		})

		t.Run("UpdateRunTimes", func(t *testing.T) {
			now := utils.UTCNow()
			job, err := fixtures.CreateTestScheduledJob(models.JobClassVoucherGeneration, now)
			require.NoError(t, err)

			next := now.Add(2 * time.Hour)
			require.NoError(t, repo.UpdateRunTimes(ctx, job.ID, now, next))

			reloaded, err := repo.ByID(ctx, job.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded.LastRunAt)
			require.NotNil(t, reloaded.NextRunAt)
			assert.WithinDuration(t, now, *reloaded.LastRunAt, time.Second)
			assert.WithinDuration(t, next, *reloaded.NextRunAt, time.Second)
		})

		t.Run("Delete", func(t *testing.T) {
			job, err := fixtures.CreateTestScheduledJob(models.JobClassVoucherOverdue, utils.UTCNow())
			require.NoError(t, err)

			require.NoError(t, repo.Delete(ctx, job.ID))

			found, err := repo.ByID(ctx, job.ID)
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestJobLogRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewJobLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		job, err := fixtures.CreateTestScheduledJob(models.JobClassTaskReminder, utils.UTCNow().Add(time.Hour))
		require.NoError(t, err)

		t.Run("HasLogsEmpty", func(t *testing.T) {
			has, err := repo.HasLogs(ctx, job.ID)
			require.NoError(t, err)
			assert.False(t, has)
		})

		t.Run("SaveAndHasLogs", func(t *testing.T) {
			_, err := fixtures.CreateTestJobLog(job, models.JobLogStatusSuccess)
			require.NoError(t, err)
			_, err = fixtures.CreateTestJobLog(job, models.JobLogStatusFailed)
			require.NoError(t, err)

			has, err := repo.HasLogs(ctx, job.ID)
			require.NoError(t, err)
			assert.True(t, has)
		})

		t.Run("ListByJobWithStatusFilter", func(t *testing.T) {
			status := models.JobLogStatusFailed
			rows, err := repo.ListByJob(ctx, models.JobLogFilter{ScheduledJobID: &job.ID, Status: &status}, 10, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, models.JobLogStatusFailed, rows[0].Status)

			count, err := repo.CountByJob(ctx, models.JobLogFilter{ScheduledJobID: &job.ID})
			require.NoError(t, err)
			assert.EqualValues(t, 2, count)
		})

		t.Run("DeleteByJob", func(t *testing.T) {
			deleted, err := repo.DeleteByJob(ctx, job.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 2, deleted)

			has, err := repo.HasLogs(ctx, job.ID)
			require.NoError(t, err)
			assert.False(t, has)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTaskReminderLogRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTaskReminderLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		batch, err := fixtures.CreateTestBatch()
		require.NoError(t, err)
		student, err := fixtures.CreateTestStudent(batch.ID, 15)
		require.NoError(t, err)
		task, err := fixtures.CreateTestTask(batch.ID, utils.UTCNow().Add(24*time.Hour))
		require.NoError(t, err)

		t.Run("ExistsBeforeSave", func(t *testing.T) {
			exists, err := repo.Exists(ctx, task.ID, student.ID, models.ReminderTypeDeadline24h)
			require.NoError(t, err)
			assert.False(t, exists)
		})

		t.Run("SaveThenExists", func(t *testing.T) {
			entry := &models.TaskReminderLog{
				TaskID:           task.ID,
				StudentID:        student.ID,
				ReminderType:     models.ReminderTypeDeadline24h,
				ReminderSentAt:   utils.UTCNow(),
				NotificationSent: utils.ToPtr(true),
				EmailSent:        utils.ToPtr(true),
			}
			require.NoError(t, repo.Save(ctx, entry))

			exists, err := repo.Exists(ctx, task.ID, student.ID, models.ReminderTypeDeadline24h)
			require.NoError(t, err)
			assert.True(t, exists)

			count, err := repo.CountByTask(ctx, task.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVoucherRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewVoucherRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		batch, err := fixtures.CreateTestBatch()
		require.NoError(t, err)
		student, err := fixtures.CreateTestStudent(batch.ID, 10)
		require.NoError(t, err)

		now := utils.UTCNow()

		t.Run("ExistsForMonth", func(t *testing.T) {
			due := now.AddDate(0, 2, 0)
			_, err := fixtures.CreateTestVoucher(student.ID, due, models.VoucherStatusPending)
			require.NoError(t, err)

			exists, err := repo.ExistsForMonth(ctx, student.ID, due.Year(), due.Month())
			require.NoError(t, err)
			assert.True(t, exists)

			other := due.AddDate(0, 7, 0)
			exists, err = repo.ExistsForMonth(ctx, student.ID, other.Year(), other.Month())
			require.NoError(t, err)
			assert.False(t, exists)
		})

		t.Run("ListPendingDueBefore", func(t *testing.T) {
			overdue, err := fixtures.CreateTestVoucher(student.ID, now.AddDate(0, -2, 0), models.VoucherStatusPending)
			require.NoError(t, err)
			// Approved vouchers are settled and never overdue
			_, err = fixtures.CreateTestVoucher(student.ID, now.AddDate(0, -3, 0), models.VoucherStatusApproved)
			require.NoError(t, err)
			// Not yet due
			_, err = fixtures.CreateTestVoucher(student.ID, now.AddDate(0, 1, 0), models.VoucherStatusPending)
			require.NoError(t, err)

			vouchers, err := repo.ListPendingDueBefore(ctx, now.AddDate(0, -1, 0))
			require.NoError(t, err)
			require.Len(t, vouchers, 1)
			assert.Equal(t, overdue.ID, vouchers[0].ID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestStudentRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewStudentRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		batch, err := fixtures.CreateTestBatch()
		require.NoError(t, err)

		t.Run("ListActiveByPromiseDay", func(t *testing.T) {
			matching, err := fixtures.CreateTestStudent(batch.ID, 15)
			require.NoError(t, err)
			_, err = fixtures.CreateTestStudent(batch.ID, 20)
			require.NoError(t, err)

			students, err := repo.ListActiveByPromiseDay(ctx, 15)
			require.NoError(t, err)
			require.Len(t, students, 1)
			assert.Equal(t, matching.ID, students[0].ID)
		})

		t.Run("Block", func(t *testing.T) {
			student, err := fixtures.CreateTestStudent(batch.ID, 5)
			require.NoError(t, err)
			assert.False(t, student.IsBlockedNow())

			at := utils.UTCNow()
			require.NoError(t, repo.Block(ctx, student.ID, "Unpaid voucher past due", at))

			reloaded, err := repo.ByID(ctx, student.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.True(t, reloaded.IsBlockedNow())
			require.NotNil(t, reloaded.BlockReason)
			assert.Equal(t, "Unpaid voucher past due", *reloaded.BlockReason)
			require.NotNil(t, reloaded.BlockedAt)
		})

		t.Run("BlockedStudentExcludedFromPromiseDayList", func(t *testing.T) {
			student, err := fixtures.CreateTestStudent(batch.ID, 25)
			require.NoError(t, err)
			require.NoError(t, repo.Block(ctx, student.ID, "test", utils.UTCNow()))

			students, err := repo.ListActiveByPromiseDay(ctx, 25)
			require.NoError(t, err)
			assert.Empty(t, students)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTaskRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTaskRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		batch, err := fixtures.CreateTestBatch()
		require.NoError(t, err)
		now := utils.UTCNow()

		t.Run("ListExpiringBetween", func(t *testing.T) {
			inWindow, err := fixtures.CreateTestTask(batch.ID, now.Add(24*time.Hour+30*time.Minute))
			require.NoError(t, err)
			_, err = fixtures.CreateTestTask(batch.ID, now.Add(48*time.Hour))
			require.NoError(t, err)

			tasks, err := repo.ListExpiringBetween(ctx, now.Add(24*time.Hour), now.Add(25*time.Hour))
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, inWindow.ID, tasks[0].ID)
		})

		t.Run("SubmittedStudentIDs", func(t *testing.T) {
			task, err := fixtures.CreateTestTask(batch.ID, now.Add(24*time.Hour))
			require.NoError(t, err)
			submitted, err := fixtures.CreateTestStudent(batch.ID, 1)
			require.NoError(t, err)
			_, err = fixtures.CreateTestStudent(batch.ID, 2)
			require.NoError(t, err)
			_, err = fixtures.CreateTestSubmission(task.ID, submitted.ID)
			require.NoError(t, err)

			ids, err := repo.SubmittedStudentIDs(ctx, task.ID)
			require.NoError(t, err)
			require.Len(t, ids, 1)
			_, ok := ids[submitted.ID]
			assert.True(t, ok)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAdminRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		t.Run("ByEmail", func(t *testing.T) {
			found, err := repo.ByEmail(ctx, admin.Email)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, admin.ID, found.ID)

			missing, err := repo.ByEmail(ctx, "nobody@example.com")
			assert.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("UpdateLastLogin", func(t *testing.T) {
			at := utils.UTCNow()
			require.NoError(t, repo.UpdateLastLogin(ctx, admin.ID, at))

			reloaded, err := repo.ByID(ctx, admin.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			require.NotNil(t, reloaded.LastLoginAt)
			assert.WithinDuration(t, at, *reloaded.LastLoginAt, time.Second)
		})

		return nil
	})
	require.NoError(t, err)
}
