// Package testing provides test utilities and database setup for testing the job scheduling service
package testing

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestBatch creates a batch with a unique name
func (tf *TestFixtures) CreateTestBatch() (*models.Batch, error) {
	batch := &models.Batch{
		Name:     fmt.Sprintf("Batch %d-%d", time.Now().UnixNano(), rand.Intn(10000)),
		IsActive: utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(batch).Error; err != nil {
		return nil, fmt.Errorf("failed to create test batch: %w", err)
	}
	return batch, nil
}

// CreateTestStudent creates an active student enrolled in the given batch
func (tf *TestFixtures) CreateTestStudent(batchID uint, promiseDay int) (*models.Student, error) {
	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	student := &models.Student{
		UUID:                   uuid.New(),
		Name:                   "Jane Doe",
		Email:                  fmt.Sprintf("jane.doe.%s@example.com", randomDigits),
		Mobile:                 utils.ToPtr(fmt.Sprintf("+989%s", randomDigits)),
		BatchID:                &batchID,
		Fees:                   1500,
		ExpectedFeePromiseDate: &promiseDay,
		IsActive:               utils.ToPtr(true),
		IsBlocked:              utils.ToPtr(false),
	}
	if err := tf.DB.DB.Create(student).Error; err != nil {
		return nil, fmt.Errorf("failed to create test student: %w", err)
	}
	return student, nil
}

// CreateTestTask creates a task for a batch expiring at the given time
func (tf *TestFixtures) CreateTestTask(batchID uint, expiry time.Time) (*models.Task, error) {
	task := &models.Task{
		Title:       fmt.Sprintf("Assignment %d", rand.Intn(10000)),
		Description: utils.ToPtr("Complete the exercise set"),
		BatchID:     batchID,
		ExpiryDate:  expiry,
	}
	if err := tf.DB.DB.Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to create test task: %w", err)
	}
	return task, nil
}

// CreateTestSubmission marks a task as submitted by a student
func (tf *TestFixtures) CreateTestSubmission(taskID, studentID uint) (*models.SubmittedTask, error) {
	submission := &models.SubmittedTask{
		TaskID:      taskID,
		StudentID:   studentID,
		SubmittedAt: utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to create test submission: %w", err)
	}
	return submission, nil
}

// CreateTestVoucher creates a voucher for a student due on the given date
func (tf *TestFixtures) CreateTestVoucher(studentID uint, dueDate time.Time, status string) (*models.Voucher, error) {
	voucher := &models.Voucher{
		StudentID: studentID,
		FeeAmount: 1500,
		DueDate:   dueDate,
		DueYear:   dueDate.Year(),
		DueMonth:  int(dueDate.Month()),
		Status:    status,
	}
	if err := tf.DB.DB.Create(voucher).Error; err != nil {
		return nil, fmt.Errorf("failed to create test voucher: %w", err)
	}
	return voucher, nil
}

// CreateTestScheduledJob creates an enabled scheduled job due at nextRunAt
func (tf *TestFixtures) CreateTestScheduledJob(class models.JobClass, nextRunAt time.Time) (*models.ScheduledJob, error) {
	cfgJSON, err := json.Marshal(models.ScheduleConfig{})
	if err != nil {
		return nil, err
	}

	job := &models.ScheduledJob{
		Name:           fmt.Sprintf("%s-%d-%d", class, time.Now().UnixNano(), rand.Intn(10000)),
		JobClass:       class,
		ScheduleType:   models.ScheduleTypeHourly,
		ScheduleConfig: cfgJSON,
		Enabled:        utils.ToPtr(true),
		NextRunAt:      &nextRunAt,
	}
	if err := tf.DB.DB.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create test scheduled job: %w", err)
	}
	return job, nil
}

// CreateTestJobLog creates a terminal execution record for a scheduled job
func (tf *TestFixtures) CreateTestJobLog(job *models.ScheduledJob, status string) (*models.JobLog, error) {
	started := utils.UTCNow().Add(-time.Minute)
	completed := utils.UTCNow()
	execMs := completed.Sub(started).Milliseconds()

	logRow := &models.JobLog{
		ScheduledJobID:  job.ID,
		JobName:         job.Name,
		JobClass:        job.JobClass,
		CorrelationID:   uuid.New(),
		Status:          status,
		StartedAt:       started,
		CompletedAt:     &completed,
		ExecutionTimeMs: &execMs,
	}
	if err := tf.DB.DB.Create(logRow).Error; err != nil {
		return nil, fmt.Errorf("failed to create test job log: %w", err)
	}
	return logRow, nil
}

// CreateTestAdmin creates an active admin whose password is "TestPass123!"
func (tf *TestFixtures) CreateTestAdmin() (*models.Admin, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Email:        fmt.Sprintf("admin.%d@example.com", rand.Intn(1000000)),
		Name:         "Test Admin",
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}
