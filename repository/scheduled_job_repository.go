package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"gorm.io/gorm"
)

// ScheduledJobRepositoryImpl implements ScheduledJobRepository
type ScheduledJobRepositoryImpl struct {
	*BaseRepository[models.ScheduledJob, models.ScheduledJobFilter]
}

// NewScheduledJobRepository creates a new scheduled job repository
func NewScheduledJobRepository(db *gorm.DB) ScheduledJobRepository {
	return &ScheduledJobRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ScheduledJob, models.ScheduledJobFilter](db),
	}
}

// ByName retrieves a job definition by its unique name
func (r *ScheduledJobRepositoryImpl) ByName(ctx context.Context, name string) (*models.ScheduledJob, error) {
	db := r.getDB(ctx)

	var job models.ScheduledJob
	err := db.Where("name = ?", name).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find scheduled job by name %s: %w", name, err)
	}

	return &job, nil
}

func applyScheduledJobFilter(db *gorm.DB, filter models.ScheduledJobFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.JobClass != nil {
		db = db.Where("job_class = ?", *filter.JobClass)
	}
	if filter.ScheduleType != nil {
		db = db.Where("schedule_type = ?", *filter.ScheduleType)
	}
	if filter.Enabled != nil {
		db = db.Where("enabled = ?", *filter.Enabled)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// List retrieves job definitions matching the filter with pagination
func (r *ScheduledJobRepositoryImpl) List(ctx context.Context, filter models.ScheduledJobFilter, limit, offset int) ([]*models.ScheduledJob, error) {
	db := applyScheduledJobFilter(r.getDB(ctx), filter)

	var jobs []*models.ScheduledJob
	err := db.Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled jobs: %w", err)
	}

	return jobs, nil
}

// Count returns the number of job definitions matching the filter
func (r *ScheduledJobRepositoryImpl) Count(ctx context.Context, filter models.ScheduledJobFilter) (int64, error) {
	db := applyScheduledJobFilter(r.getDB(ctx).Model(&models.ScheduledJob{}), filter)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count scheduled jobs: %w", err)
	}
	return count, nil
}

// ListDue returns enabled jobs whose next_run_at is null or has passed
func (r *ScheduledJobRepositoryImpl) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledJob, error) {
	db := r.getDB(ctx)

	var jobs []*models.ScheduledJob
	err := db.Where("enabled = ? AND (next_run_at IS NULL OR next_run_at <= ?)", true, now).
		Order("id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due jobs: %w", err)
	}

	return jobs, nil
}

// ClaimDueJob advances next_run_at only while the row still looks due, so
// two overlapping dispatchers cannot both win the same job
func (r *ScheduledJobRepositoryImpl) ClaimDueJob(ctx context.Context, jobID uint, now, nextRunAt time.Time) (bool, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.ScheduledJob{}).
		Where("id = ? AND enabled = ? AND (next_run_at IS NULL OR next_run_at <= ?)", jobID, true, now).
		Update("next_run_at", nextRunAt)
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim scheduled job %d: %w", jobID, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// UpdateRunTimes records a completed run's timestamps on the job definition
func (r *ScheduledJobRepositoryImpl) UpdateRunTimes(ctx context.Context, jobID uint, lastRunAt, nextRunAt time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.ScheduledJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"last_run_at": lastRunAt,
			"next_run_at": nextRunAt,
			"updated_at":  lastRunAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update run times for job %d: %w", jobID, err)
	}

	return nil
}

// UpdateMetadata stores the handler's latest scratch data on the job row
func (r *ScheduledJobRepositoryImpl) UpdateMetadata(ctx context.Context, jobID uint, metadata json.RawMessage) error {
	db := r.getDB(ctx)

	err := db.Model(&models.ScheduledJob{}).
		Where("id = ?", jobID).
		Update("metadata", metadata).Error
	if err != nil {
		return fmt.Errorf("failed to update metadata for job %d: %w", jobID, err)
	}
	return nil
}

// Delete removes a job definition
func (r *ScheduledJobRepositoryImpl) Delete(ctx context.Context, jobID uint) error {
	db := r.getDB(ctx)

	if err := db.Delete(&models.ScheduledJob{}, jobID).Error; err != nil {
		return fmt.Errorf("failed to delete scheduled job %d: %w", jobID, err)
	}
	return nil
}
