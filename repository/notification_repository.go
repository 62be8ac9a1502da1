package repository

import (
	"context"
	"fmt"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"gorm.io/gorm"
)

// NotificationRepositoryImpl implements NotificationRepository
type NotificationRepositoryImpl struct {
	*BaseRepository[models.Notification, models.NotificationFilter]
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Notification, models.NotificationFilter](db),
	}
}

// ListByStudent retrieves a student's notifications, newest first
func (r *NotificationRepositoryImpl) ListByStudent(ctx context.Context, studentID uint, limit, offset int) ([]*models.Notification, error) {
	db := r.getDB(ctx)

	var rows []*models.Notification
	err := db.Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for student %d: %w", studentID, err)
	}

	return rows, nil
}
