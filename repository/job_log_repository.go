package repository

import (
	"context"
	"fmt"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"gorm.io/gorm"
)

// JobLogRepositoryImpl implements JobLogRepository
type JobLogRepositoryImpl struct {
	*BaseRepository[models.JobLog, models.JobLogFilter]
}

// NewJobLogRepository creates a new job log repository
func NewJobLogRepository(db *gorm.DB) JobLogRepository {
	return &JobLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.JobLog, models.JobLogFilter](db),
	}
}

func applyJobLogFilter(db *gorm.DB, filter models.JobLogFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.ScheduledJobID != nil {
		db = db.Where("scheduled_job_id = ?", *filter.ScheduledJobID)
	}
	if filter.JobClass != nil {
		db = db.Where("job_class = ?", *filter.JobClass)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		db = db.Where("started_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("started_at <= ?", *filter.DateTo)
	}
	return db
}

// ListByJob retrieves execution logs matching the filter, newest first
func (r *JobLogRepositoryImpl) ListByJob(ctx context.Context, filter models.JobLogFilter, limit, offset int) ([]*models.JobLog, error) {
	db := applyJobLogFilter(r.getDB(ctx), filter)

	var logs []*models.JobLog
	err := db.Order("started_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list job logs: %w", err)
	}

	return logs, nil
}

// CountByJob returns the number of execution logs matching the filter
func (r *JobLogRepositoryImpl) CountByJob(ctx context.Context, filter models.JobLogFilter) (int64, error) {
	db := applyJobLogFilter(r.getDB(ctx).Model(&models.JobLog{}), filter)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count job logs: %w", err)
	}
	return count, nil
}

// HasLogs reports whether any execution history references the job
func (r *JobLogRepositoryImpl) HasLogs(ctx context.Context, scheduledJobID uint) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.JobLog{}).
		Where("scheduled_job_id = ?", scheduledJobID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check job logs for job %d: %w", scheduledJobID, err)
	}
	return count > 0, nil
}

// DeleteByJob bulk-clears the execution history of one job
func (r *JobLogRepositoryImpl) DeleteByJob(ctx context.Context, scheduledJobID uint) (int64, error) {
	db := r.getDB(ctx)

	res := db.Where("scheduled_job_id = ?", scheduledJobID).Delete(&models.JobLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete job logs for job %d: %w", scheduledJobID, res.Error)
	}
	return res.RowsAffected, nil
}
