package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"gorm.io/gorm"
)

// StudentRepositoryImpl implements StudentRepository
type StudentRepositoryImpl struct {
	*BaseRepository[models.Student, models.StudentFilter]
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &StudentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Student, models.StudentFilter](db),
	}
}

// ListActiveByPromiseDay returns active, unblocked students owing fees whose
// promised payment day matches the given day-of-month
func (r *StudentRepositoryImpl) ListActiveByPromiseDay(ctx context.Context, day int) ([]*models.Student, error) {
	db := r.getDB(ctx)

	var students []*models.Student
	err := db.Where("is_active = ? AND is_blocked = ? AND fees > 0 AND expected_fee_promise_date = ?", true, false, day).
		Order("id ASC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students by promise day %d: %w", day, err)
	}

	return students, nil
}

// ListActiveByBatch returns active students enrolled in the batch
func (r *StudentRepositoryImpl) ListActiveByBatch(ctx context.Context, batchID uint) ([]*models.Student, error) {
	db := r.getDB(ctx)

	var students []*models.Student
	err := db.Where("is_active = ? AND batch_id = ?", true, batchID).
		Order("id ASC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students by batch %d: %w", batchID, err)
	}

	return students, nil
}

// Block sets the student's block flag and reason. Blocking is one-directional
// here; unblocking is an administrative action outside the job engine.
func (r *StudentRepositoryImpl) Block(ctx context.Context, studentID uint, reason string, at time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Student{}).
		Where("id = ?", studentID).
		Updates(map[string]any{
			"is_blocked":   true,
			"block_reason": reason,
			"blocked_at":   at,
			"updated_at":   at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to block student %d: %w", studentID, err)
	}

	return nil
}
