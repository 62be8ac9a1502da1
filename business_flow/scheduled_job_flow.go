package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/dto"
	"github.com/RehanRiaz5383/lms-v2-sub002/app/scheduler"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"gorm.io/gorm"
)

// ScheduledJobFlow represents scheduled job management operations
type ScheduledJobFlow interface {
	CreateJob(ctx context.Context, req *dto.CreateScheduledJobRequest, metadata *ClientMetadata) (*dto.ScheduledJobInfo, error)
	UpdateJob(ctx context.Context, jobID uint, req *dto.UpdateScheduledJobRequest, metadata *ClientMetadata) (*dto.ScheduledJobInfo, error)
	GetJob(ctx context.Context, jobID uint) (*dto.ScheduledJobInfo, error)
	ListJobs(ctx context.Context, req *dto.ListScheduledJobsRequest) (*dto.ListScheduledJobsResponse, error)
	SetJobEnabled(ctx context.Context, jobID uint, enabled bool, metadata *ClientMetadata) (*dto.ScheduledJobInfo, error)
	DeleteJob(ctx context.Context, jobID uint, metadata *ClientMetadata) error
}

// ScheduledJobFlowImpl implements ScheduledJobFlow
type ScheduledJobFlowImpl struct {
	jobRepo repository.ScheduledJobRepository
	logRepo repository.JobLogRepository
	db      *gorm.DB
}

// NewScheduledJobFlow creates a new scheduled job flow
func NewScheduledJobFlow(jobRepo repository.ScheduledJobRepository, logRepo repository.JobLogRepository, db *gorm.DB) ScheduledJobFlow {
	return &ScheduledJobFlowImpl{
		jobRepo: jobRepo,
		logRepo: logRepo,
		db:      db,
	}
}

// CreateJob registers a new recurring job and seeds its first run time
func (f *ScheduledJobFlowImpl) CreateJob(ctx context.Context, req *dto.CreateScheduledJobRequest, metadata *ClientMetadata) (*dto.ScheduledJobInfo, error) {
	if req == nil {
		return nil, NewBusinessError("JOB_VALIDATION_FAILED", "Job creation request is required", ErrJobUpdateRequired)
	}

	jobClass := models.JobClass(req.JobClass)
	if !models.IsValidJobClass(jobClass) {
		return nil, NewBusinessErrorf("INVALID_JOB_CLASS", "Unknown job class %q", ErrInvalidJobClass, req.JobClass)
	}
	scheduleType := models.ScheduleType(req.ScheduleType)
	if !models.IsValidScheduleType(scheduleType) {
		return nil, NewBusinessErrorf("INVALID_SCHEDULE_TYPE", "Unknown schedule type %q", ErrInvalidScheduleType, req.ScheduleType)
	}

	cfg, err := decodeScheduleConfig(req.Schedule)
	if err != nil {
		return nil, NewBusinessError("INVALID_SCHEDULE_CONFIG", "Schedule config is not valid JSON", ErrInvalidScheduleConfig)
	}

	now := utils.UTCNow()
	nextRun, err := scheduler.NextRunAt(scheduleType, cfg, now)
	if err != nil {
		return nil, NewBusinessError("INVALID_SCHEDULE_CONFIG", "Schedule config does not produce a next run time", err)
	}

	existing, err := f.jobRepo.ByName(ctx, req.Name)
	if err != nil {
		return nil, NewBusinessError("JOB_LOOKUP_FAILED", "Failed to check job name", err)
	}
	if existing != nil {
		return nil, NewBusinessErrorf("JOB_NAME_EXISTS", "A job named %q already exists", ErrJobNameAlreadyExists, req.Name)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	job := &models.ScheduledJob{
		Name:           req.Name,
		JobClass:       jobClass,
		ScheduleType:   scheduleType,
		ScheduleConfig: req.Schedule,
		Enabled:        &enabled,
		NextRunAt:      &nextRun,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Description != "" {
		job.Description = &req.Description
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.jobRepo.Save(txCtx, job)
	})
	if err != nil {
		return nil, NewBusinessError("JOB_CREATE_FAILED", "Failed to create scheduled job", err)
	}

	info := ToScheduledJobInfo(*job)
	return &info, nil
}

// UpdateJob applies a partial edit; schedule changes recompute next_run_at
func (f *ScheduledJobFlowImpl) UpdateJob(ctx context.Context, jobID uint, req *dto.UpdateScheduledJobRequest, metadata *ClientMetadata) (*dto.ScheduledJobInfo, error) {
	if req == nil || (req.Name == nil && req.ScheduleType == nil && req.Schedule == nil && req.Description == nil && req.Enabled == nil) {
		return nil, NewBusinessError("JOB_UPDATE_REQUIRED", "At least one field must be provided", ErrJobUpdateRequired)
	}

	job, err := f.jobRepo.ByID(ctx, jobID)
	if err != nil {
		return nil, NewBusinessError("JOB_LOOKUP_FAILED", "Failed to lookup scheduled job", err)
	}
	if job == nil {
		return nil, NewBusinessError("JOB_NOT_FOUND", "Scheduled job not found", ErrScheduledJobNotFound)
	}

	now := utils.UTCNow()
	scheduleChanged := false

	if req.Name != nil && *req.Name != job.Name {
		existing, err := f.jobRepo.ByName(ctx, *req.Name)
		if err != nil {
			return nil, NewBusinessError("JOB_LOOKUP_FAILED", "Failed to check job name", err)
		}
		if existing != nil {
			return nil, NewBusinessErrorf("JOB_NAME_EXISTS", "A job named %q already exists", ErrJobNameAlreadyExists, *req.Name)
		}
		job.Name = *req.Name
	}
	if req.Description != nil {
		job.Description = req.Description
	}
	if req.ScheduleType != nil {
		st := models.ScheduleType(*req.ScheduleType)
		if !models.IsValidScheduleType(st) {
			return nil, NewBusinessErrorf("INVALID_SCHEDULE_TYPE", "Unknown schedule type %q", ErrInvalidScheduleType, *req.ScheduleType)
		}
		job.ScheduleType = st
		scheduleChanged = true
	}
	if req.Schedule != nil {
		job.ScheduleConfig = req.Schedule
		scheduleChanged = true
	}
	if req.Enabled != nil {
		job.Enabled = req.Enabled
		if *req.Enabled {
			// Re-enabling recomputes the run time so a long-disabled job
			// does not fire immediately on a stale next_run_at
			scheduleChanged = true
		}
	}

	if scheduleChanged {
		cfg, err := job.Config()
		if err != nil {
			return nil, NewBusinessError("INVALID_SCHEDULE_CONFIG", "Schedule config is not valid JSON", ErrInvalidScheduleConfig)
		}
		nextRun, err := scheduler.NextRunAt(job.ScheduleType, cfg, now)
		if err != nil {
			return nil, NewBusinessError("INVALID_SCHEDULE_CONFIG", "Schedule config does not produce a next run time", err)
		}
		job.NextRunAt = &nextRun
	}

	job.UpdatedAt = now
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.jobRepo.Update(txCtx, job)
	})
	if err != nil {
		return nil, NewBusinessError("JOB_UPDATE_FAILED", "Failed to update scheduled job", err)
	}

	info := ToScheduledJobInfo(*job)
	return &info, nil
}

// GetJob returns one scheduled job by ID
func (f *ScheduledJobFlowImpl) GetJob(ctx context.Context, jobID uint) (*dto.ScheduledJobInfo, error) {
	job, err := f.jobRepo.ByID(ctx, jobID)
	if err != nil {
		return nil, NewBusinessError("JOB_LOOKUP_FAILED", "Failed to lookup scheduled job", err)
	}
	if job == nil {
		return nil, NewBusinessError("JOB_NOT_FOUND", "Scheduled job not found", ErrScheduledJobNotFound)
	}
	info := ToScheduledJobInfo(*job)
	return &info, nil
}

// ListJobs returns a filtered page of scheduled jobs
func (f *ScheduledJobFlowImpl) ListJobs(ctx context.Context, req *dto.ListScheduledJobsRequest) (*dto.ListScheduledJobsResponse, error) {
	page, limit := 1, utils.DefaultPageSize
	filter := models.ScheduledJobFilter{}
	if req != nil {
		page, limit = normalizePagination(req.Page, req.Limit)
		if req.JobClass != "" {
			jc := models.JobClass(req.JobClass)
			filter.JobClass = &jc
		}
		filter.Enabled = req.Enabled
	}

	total, err := f.jobRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("JOB_LIST_FAILED", "Failed to count scheduled jobs", err)
	}

	jobs, err := f.jobRepo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("JOB_LIST_FAILED", "Failed to list scheduled jobs", err)
	}

	resp := &dto.ListScheduledJobsResponse{
		Jobs:       make([]dto.ScheduledJobInfo, 0, len(jobs)),
		Pagination: buildPagination(total, page, limit),
	}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, ToScheduledJobInfo(*job))
	}
	return resp, nil
}

// SetJobEnabled toggles dispatching for one job
func (f *ScheduledJobFlowImpl) SetJobEnabled(ctx context.Context, jobID uint, enabled bool, metadata *ClientMetadata) (*dto.ScheduledJobInfo, error) {
	return f.UpdateJob(ctx, jobID, &dto.UpdateScheduledJobRequest{Enabled: &enabled}, metadata)
}

// DeleteJob removes a job definition. Jobs with execution history are
// protected; their logs must be cleared first so the audit trail cannot be
// dropped by accident.
func (f *ScheduledJobFlowImpl) DeleteJob(ctx context.Context, jobID uint, metadata *ClientMetadata) error {
	job, err := f.jobRepo.ByID(ctx, jobID)
	if err != nil {
		return NewBusinessError("JOB_LOOKUP_FAILED", "Failed to lookup scheduled job", err)
	}
	if job == nil {
		return NewBusinessError("JOB_NOT_FOUND", "Scheduled job not found", ErrScheduledJobNotFound)
	}

	hasLogs, err := f.logRepo.HasLogs(ctx, jobID)
	if err != nil {
		return NewBusinessError("JOB_LOG_LOOKUP_FAILED", "Failed to check execution history", err)
	}
	if hasLogs {
		return NewBusinessError("JOB_HAS_HISTORY", "Clear the job's execution history before deleting it", ErrJobHasExecutionHistory)
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.jobRepo.Delete(txCtx, jobID)
	})
	if err != nil {
		return NewBusinessError("JOB_DELETE_FAILED", "Failed to delete scheduled job", err)
	}
	return nil
}

func decodeScheduleConfig(raw json.RawMessage) (models.ScheduleConfig, error) {
	var cfg models.ScheduleConfig
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode schedule config: %w", err)
	}
	return cfg, nil
}
