package businessflow

import (
	"context"
	"strconv"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/dto"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// JobLogFlow represents execution history operations
type JobLogFlow interface {
	ListLogs(ctx context.Context, req *dto.ListJobLogsRequest) (*dto.ListJobLogsResponse, error)
	GetLog(ctx context.Context, logID uint) (*dto.JobLogInfo, error)
	ClearLogs(ctx context.Context, req *dto.ClearJobLogsRequest, metadata *ClientMetadata) (*dto.ClearJobLogsResponse, error)
	DownloadLogsExcel(ctx context.Context, req *dto.ListJobLogsRequest) (string, []byte, error)
}

// JobLogFlowImpl implements JobLogFlow
type JobLogFlowImpl struct {
	logRepo repository.JobLogRepository
	jobRepo repository.ScheduledJobRepository
	db      *gorm.DB
}

// NewJobLogFlow creates a new job log flow
func NewJobLogFlow(logRepo repository.JobLogRepository, jobRepo repository.ScheduledJobRepository, db *gorm.DB) JobLogFlow {
	return &JobLogFlowImpl{
		logRepo: logRepo,
		jobRepo: jobRepo,
		db:      db,
	}
}

// ListLogs returns a filtered page of execution records, newest first
func (f *JobLogFlowImpl) ListLogs(ctx context.Context, req *dto.ListJobLogsRequest) (*dto.ListJobLogsResponse, error) {
	filter, page, limit, err := buildLogFilter(req)
	if err != nil {
		return nil, err
	}

	total, err := f.logRepo.CountByJob(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("JOB_LOG_LIST_FAILED", "Failed to count job logs", err)
	}

	logs, err := f.logRepo.ListByJob(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("JOB_LOG_LIST_FAILED", "Failed to list job logs", err)
	}

	resp := &dto.ListJobLogsResponse{
		Logs:       make([]dto.JobLogInfo, 0, len(logs)),
		Pagination: buildPagination(total, page, limit),
	}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, ToJobLogInfo(*l))
	}
	return resp, nil
}

// GetLog returns one execution record by ID
func (f *JobLogFlowImpl) GetLog(ctx context.Context, logID uint) (*dto.JobLogInfo, error) {
	l, err := f.logRepo.ByID(ctx, logID)
	if err != nil {
		return nil, NewBusinessError("JOB_LOG_LOOKUP_FAILED", "Failed to lookup job log", err)
	}
	if l == nil {
		return nil, NewBusinessError("JOB_LOG_NOT_FOUND", "Job log not found", ErrJobLogNotFound)
	}
	info := ToJobLogInfo(*l)
	return &info, nil
}

// ClearLogs purges every execution record of one job
func (f *JobLogFlowImpl) ClearLogs(ctx context.Context, req *dto.ClearJobLogsRequest, metadata *ClientMetadata) (*dto.ClearJobLogsResponse, error) {
	if req == nil || req.ScheduledJobID == 0 {
		return nil, NewBusinessError("JOB_LOG_VALIDATION_FAILED", "scheduled_job_id is required", ErrScheduledJobNotFound)
	}

	job, err := f.jobRepo.ByID(ctx, req.ScheduledJobID)
	if err != nil {
		return nil, NewBusinessError("JOB_LOOKUP_FAILED", "Failed to lookup scheduled job", err)
	}
	if job == nil {
		return nil, NewBusinessError("JOB_NOT_FOUND", "Scheduled job not found", ErrScheduledJobNotFound)
	}

	var deleted int64
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		deleted, err = f.logRepo.DeleteByJob(txCtx, req.ScheduledJobID)
		return err
	})
	if err != nil {
		return nil, NewBusinessError("JOB_LOG_CLEAR_FAILED", "Failed to clear job logs", err)
	}

	return &dto.ClearJobLogsResponse{Deleted: deleted}, nil
}

// DownloadLogsExcel exports the filtered execution history as an xlsx workbook
func (f *JobLogFlowImpl) DownloadLogsExcel(ctx context.Context, req *dto.ListJobLogsRequest) (string, []byte, error) {
	filter, _, _, err := buildLogFilter(req)
	if err != nil {
		return "", nil, err
	}

	// Export is bounded by one oversized page rather than paginated
	logs, err := f.logRepo.ListByJob(ctx, filter, 10000, 0)
	if err != nil {
		return "", nil, NewBusinessError("JOB_LOG_LIST_FAILED", "Failed to list job logs", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"id", "scheduled_job_id", "job_name", "job_class", "status", "message", "error", "correlation_id", "started_at", "completed_at", "execution_time_ms"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, l := range logs {
		msg := ""
		if l.Message != nil {
			msg = *l.Message
		}
		errMsg := ""
		if l.Error != nil {
			errMsg = *l.Error
		}
		completed := ""
		if l.CompletedAt != nil {
			completed = l.CompletedAt.UTC().Format(time.RFC3339)
		}
		execMs := ""
		if l.ExecutionTimeMs != nil {
			execMs = strconv.FormatInt(*l.ExecutionTimeMs, 10)
		}
		record := []string{
			strconv.FormatUint(uint64(l.ID), 10),
			strconv.FormatUint(uint64(l.ScheduledJobID), 10),
			l.JobName,
			string(l.JobClass),
			l.Status,
			msg,
			errMsg,
			l.CorrelationID.String(),
			l.StartedAt.UTC().Format(time.RFC3339),
			completed,
			execMs,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return "job_logs.xlsx", buf.Bytes(), nil
}

func buildLogFilter(req *dto.ListJobLogsRequest) (models.JobLogFilter, int, int, error) {
	filter := models.JobLogFilter{}
	page, limit := 1, utils.DefaultPageSize
	if req == nil {
		return filter, page, limit, nil
	}

	if req.DateFrom != nil && req.DateTo != nil && req.DateFrom.After(*req.DateTo) {
		return filter, 0, 0, NewBusinessError("JOB_LOG_VALIDATION_FAILED", "date_from cannot be after date_to", ErrStartDateAfterEndDate)
	}

	page, limit = normalizePagination(req.Page, req.Limit)
	filter.ScheduledJobID = req.ScheduledJobID
	if req.JobClass != "" {
		jc := models.JobClass(req.JobClass)
		filter.JobClass = &jc
	}
	if req.Status != "" {
		s := req.Status
		filter.Status = &s
	}
	filter.DateFrom = req.DateFrom
	filter.DateTo = req.DateTo
	return filter, page, limit, nil
}
