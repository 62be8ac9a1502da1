package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/services"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"gorm.io/gorm"
)

// TaskReminderJob notifies students whose task deadline falls inside the
// lead window and who have not submitted yet, at most once per
// (task, student, reminder_type). The task_reminder_logs ledger carries
// the once-only guarantee; re-runs inside the same window are no-ops.
type TaskReminderJob struct {
	taskRepo     repository.TaskRepository
	studentRepo  repository.StudentRepository
	reminderRepo repository.TaskReminderLogRepository
	notifier     services.NotificationSink
	emails       services.EmailQueue
	db           *gorm.DB
	leadHours    int
}

// NewTaskReminderJob creates the reminder handler
func NewTaskReminderJob(
	taskRepo repository.TaskRepository,
	studentRepo repository.StudentRepository,
	reminderRepo repository.TaskReminderLogRepository,
	notifier services.NotificationSink,
	emails services.EmailQueue,
	db *gorm.DB,
	leadHours int,
) *TaskReminderJob {
	if leadHours <= 0 {
		leadHours = utils.DefaultReminderLeadHours
	}
	return &TaskReminderJob{
		taskRepo:     taskRepo,
		studentRepo:  studentRepo,
		reminderRepo: reminderRepo,
		notifier:     notifier,
		emails:       emails,
		db:           db,
		leadHours:    leadHours,
	}
}

// Run processes every task expiring in the one-hour window leadHours ahead
func (j *TaskReminderJob) Run(ctx context.Context, rc *RunContext) error {
	windowStart := utils.StartOfHour(rc.Now).Add(time.Duration(j.leadHours) * time.Hour)
	windowEnd := windowStart.Add(time.Hour)

	tasks, err := j.taskRepo.ListExpiringBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("list expiring tasks: %w", err)
	}

	rc.SetMeta("tasks_processed", 0)
	rc.SetMeta("notifications_sent", 0)
	rc.SetMeta("emails_sent", 0)
	rc.SetMeta("reminders_skipped", 0)

	for _, task := range tasks {
		if err := j.processTask(ctx, rc, task); err != nil {
			// One task's failure must not stop the rest
			rc.Logger.Printf("jobs: task reminder failed for task id=%d: %v", task.ID, err)
			continue
		}
		rc.AddCount("tasks_processed", 1)
	}

	rc.Message = fmt.Sprintf("processed %d tasks, sent %d reminders",
		rc.Count("tasks_processed"), rc.Count("notifications_sent"))
	return nil
}

func (j *TaskReminderJob) processTask(ctx context.Context, rc *RunContext, task *models.Task) error {
	students, err := j.studentRepo.ListActiveByBatch(ctx, task.BatchID)
	if err != nil {
		return fmt.Errorf("list batch students: %w", err)
	}

	submitted, err := j.taskRepo.SubmittedStudentIDs(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}

	for _, student := range students {
		if _, done := submitted[student.ID]; done {
			continue
		}
		if err := j.remindStudent(ctx, rc, task, student); err != nil {
			// Per-student isolation: log and move on
			rc.Logger.Printf("jobs: reminder failed for task id=%d student id=%d: %v", task.ID, student.ID, err)
		}
	}
	return nil
}

// remindStudent sends one reminder and writes the ledger row in a single
// transaction so a crash cannot leave the reminder half-recorded
func (j *TaskReminderJob) remindStudent(ctx context.Context, rc *RunContext, task *models.Task, student *models.Student) error {
	exists, err := j.reminderRepo.Exists(ctx, task.ID, student.ID, models.ReminderTypeDeadline24h)
	if err != nil {
		return fmt.Errorf("check reminder ledger: %w", err)
	}
	if exists {
		rc.AddCount("reminders_skipped", 1)
		return nil
	}

	title := "Task deadline approaching"
	message := fmt.Sprintf("Your task %q is due on %s. Submit before the deadline.",
		task.Title, task.ExpiryDate.Format("2006-01-02 15:04"))

	return repository.WithTransaction(ctx, j.db, func(txCtx context.Context) error {
		notified := true
		if err := j.notifier.CreateNotification(txCtx, student.ID, models.NotificationTypeTaskReminder, title, message, map[string]any{
			"task_id":     task.ID,
			"expiry_date": task.ExpiryDate.Format(time.RFC3339),
		}); err != nil {
			// Sink failures are non-fatal; the ledger records what went out
			rc.Logger.Printf("jobs: notification failed for student id=%d: %v", student.ID, err)
			notified = false
		}

		emailed := true
		if err := j.emails.QueueEmail(txCtx, student.Email, title, message, map[string]any{
			"student_name": student.Name,
			"task_title":   task.Title,
		}); err != nil {
			rc.Logger.Printf("jobs: email enqueue failed for student id=%d: %v", student.ID, err)
			emailed = false
		}

		ledger := &models.TaskReminderLog{
			TaskID:           task.ID,
			StudentID:        student.ID,
			ReminderType:     models.ReminderTypeDeadline24h,
			ReminderSentAt:   rc.Now,
			NotificationSent: &notified,
			EmailSent:        &emailed,
		}
		if err := j.reminderRepo.Save(txCtx, ledger); err != nil {
			return fmt.Errorf("write reminder ledger: %w", err)
		}

		if notified {
			rc.AddCount("notifications_sent", 1)
		}
		if emailed {
			rc.AddCount("emails_sent", 1)
		}
		return nil
	})
}
