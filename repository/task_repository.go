package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"gorm.io/gorm"
)

// TaskRepositoryImpl implements TaskRepository
type TaskRepositoryImpl struct {
	*BaseRepository[models.Task, models.TaskFilter]
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &TaskRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Task, models.TaskFilter](db),
	}
}

// ListExpiringBetween returns tasks whose deadline falls in [from, to)
func (r *TaskRepositoryImpl) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error) {
	db := r.getDB(ctx)

	var tasks []*models.Task
	err := db.Where("expiry_date >= ? AND expiry_date < ?", from, to).
		Order("expiry_date ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks expiring between %s and %s: %w", from, to, err)
	}

	return tasks, nil
}

// SubmittedStudentIDs returns the set of students who already submitted the task
func (r *TaskRepositoryImpl) SubmittedStudentIDs(ctx context.Context, taskID uint) (map[uint]struct{}, error) {
	db := r.getDB(ctx)

	var ids []uint
	err := db.Model(&models.SubmittedTask{}).
		Where("task_id = ?", taskID).
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for task %d: %w", taskID, err)
	}

	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
