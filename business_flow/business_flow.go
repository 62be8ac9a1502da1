// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/RehanRiaz5383/lms-v2-sub002/app/dto"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToScheduledJobInfo converts a scheduled job model to its API representation
func ToScheduledJobInfo(job models.ScheduledJob) dto.ScheduledJobInfo {
	info := dto.ScheduledJobInfo{
		ID:           job.ID,
		Name:         job.Name,
		JobClass:     string(job.JobClass),
		ScheduleType: string(job.ScheduleType),
		Schedule:     job.ScheduleConfig,
		Enabled:      job.Enabled,
		LastRunAt:    job.LastRunAt,
		NextRunAt:    job.NextRunAt,
		Metadata:     job.Metadata,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
	if job.Description != nil {
		info.Description = *job.Description
	}
	return info
}

// ToJobLogInfo converts a job log model to its API representation
func ToJobLogInfo(jobLog models.JobLog) dto.JobLogInfo {
	info := dto.JobLogInfo{
		ID:              jobLog.ID,
		ScheduledJobID:  jobLog.ScheduledJobID,
		JobName:         jobLog.JobName,
		JobClass:        string(jobLog.JobClass),
		Status:          string(jobLog.Status),
		Metadata:        jobLog.Metadata,
		CorrelationID:   jobLog.CorrelationID.String(),
		StartedAt:       jobLog.StartedAt,
		CompletedAt:     jobLog.CompletedAt,
		ExecutionTimeMs: jobLog.ExecutionTimeMs,
	}
	if jobLog.Message != nil {
		info.Message = *jobLog.Message
	}
	if jobLog.Output != nil {
		info.Output = *jobLog.Output
	}
	return info
}

// normalizePagination clamps page/limit to sane defaults
func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = utils.DefaultPageSize
	}
	if limit > utils.MaxPageSize {
		limit = utils.MaxPageSize
	}
	return page, limit
}

// buildPagination computes pagination metadata for a page of results
func buildPagination(total int64, page, limit int) dto.PaginationInfo {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return dto.PaginationInfo{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
