package repository

import (
	"context"
	"fmt"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"gorm.io/gorm"
)

// TaskReminderLogRepositoryImpl implements TaskReminderLogRepository
type TaskReminderLogRepositoryImpl struct {
	*BaseRepository[models.TaskReminderLog, models.TaskReminderLogFilter]
}

// NewTaskReminderLogRepository creates a new task reminder log repository
func NewTaskReminderLogRepository(db *gorm.DB) TaskReminderLogRepository {
	return &TaskReminderLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TaskReminderLog, models.TaskReminderLogFilter](db),
	}
}

// Exists reports whether a ledger row already covers the reminder key
func (r *TaskReminderLogRepositoryImpl) Exists(ctx context.Context, taskID, studentID uint, reminderType string) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.TaskReminderLog{}).
		Where("task_id = ? AND student_id = ? AND reminder_type = ?", taskID, studentID, reminderType).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reminder log for task %d student %d: %w", taskID, studentID, err)
	}

	return count > 0, nil
}

// CountByTask returns how many reminders were ever sent for a task
func (r *TaskReminderLogRepositoryImpl) CountByTask(ctx context.Context, taskID uint) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.TaskReminderLog{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count reminder logs for task %d: %w", taskID, err)
	}
	return count, nil
}
