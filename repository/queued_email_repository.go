package repository

import (
	"context"
	"fmt"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"gorm.io/gorm"
)

// QueuedEmailRepositoryImpl implements QueuedEmailRepository
type QueuedEmailRepositoryImpl struct {
	*BaseRepository[models.QueuedEmail, models.QueuedEmailFilter]
}

// NewQueuedEmailRepository creates a new queued email repository
func NewQueuedEmailRepository(db *gorm.DB) QueuedEmailRepository {
	return &QueuedEmailRepositoryImpl{
		BaseRepository: NewBaseRepository[models.QueuedEmail, models.QueuedEmailFilter](db),
	}
}

// ListQueued returns the oldest emails still awaiting delivery
func (r *QueuedEmailRepositoryImpl) ListQueued(ctx context.Context, limit int) ([]*models.QueuedEmail, error) {
	if limit <= 0 {
		limit = 100
	}
	db := r.getDB(ctx)

	var rows []*models.QueuedEmail
	err := db.Where("status = ?", models.EmailStatusQueued).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list queued emails: %w", err)
	}

	return rows, nil
}
