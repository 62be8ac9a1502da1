// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/dto"
	"github.com/RehanRiaz5383/lms-v2-sub002/app/scheduler"
	businessflow "github.com/RehanRiaz5383/lms-v2-sub002/business_flow"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ScheduledJobHandlerInterface defines the contract for scheduled job handlers
type ScheduledJobHandlerInterface interface {
	CreateJob(cCtx fiber.Ctx) error
	UpdateJob(cCtx fiber.Ctx) error
	GetJob(cCtx fiber.Ctx) error
	ListJobs(cCtx fiber.Ctx) error
	EnableJob(cCtx fiber.Ctx) error
	DisableJob(cCtx fiber.Ctx) error
	DeleteJob(cCtx fiber.Ctx) error
	RunDueJobs(cCtx fiber.Ctx) error
}

// ScheduledJobHandler implements ScheduledJobHandlerInterface
type ScheduledJobHandler struct {
	flow       businessflow.ScheduledJobFlow
	dispatcher *scheduler.Dispatcher
	validator  *validator.Validate
}

func NewScheduledJobHandler(flow businessflow.ScheduledJobFlow, dispatcher *scheduler.Dispatcher) ScheduledJobHandlerInterface {
	return &ScheduledJobHandler{
		flow:       flow,
		dispatcher: dispatcher,
		validator:  validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *ScheduledJobHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *ScheduledJobHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateJob registers a new recurring job
func (h *ScheduledJobHandler) CreateJob(c fiber.Ctx) error {
	var req dto.CreateScheduledJobRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CreateJob(h.createRequestContext(c, "/api/v1/admin/jobs"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidJobClass(err) || businessflow.IsInvalidScheduleType(err) || businessflow.IsInvalidScheduleConfig(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job definition", "INVALID_JOB_DEFINITION", err.Error())
		}
		if businessflow.IsJobNameAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Job name already exists", "JOB_NAME_EXISTS", nil)
		}
		log.Println("Create scheduled job failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create job", "JOB_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Job created successfully", result)
}

// UpdateJob applies a partial edit to a job definition
func (h *ScheduledJobHandler) UpdateJob(c fiber.Ctx) error {
	jobID, err := h.jobIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job ID", "INVALID_JOB_ID", nil)
	}

	var req dto.UpdateScheduledJobRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.UpdateJob(h.createRequestContext(c, "/api/v1/admin/jobs/:id"), jobID, &req, metadata)
	if err != nil {
		if businessflow.IsScheduledJobNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Job not found", "JOB_NOT_FOUND", nil)
		}
		if businessflow.IsJobUpdateRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "JOB_UPDATE_REQUIRED", nil)
		}
		if businessflow.IsInvalidScheduleType(err) || businessflow.IsInvalidScheduleConfig(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job definition", "INVALID_JOB_DEFINITION", err.Error())
		}
		if businessflow.IsJobNameAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Job name already exists", "JOB_NAME_EXISTS", nil)
		}
		log.Println("Update scheduled job failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update job", "JOB_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Job updated successfully", result)
}

// GetJob returns one job definition by ID
func (h *ScheduledJobHandler) GetJob(c fiber.Ctx) error {
	jobID, err := h.jobIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job ID", "INVALID_JOB_ID", nil)
	}

	result, err := h.flow.GetJob(h.createRequestContext(c, "/api/v1/admin/jobs/:id"), jobID)
	if err != nil {
		if businessflow.IsScheduledJobNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Job not found", "JOB_NOT_FOUND", nil)
		}
		log.Println("Get scheduled job failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get job", "JOB_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Job retrieved successfully", result)
}

// ListJobs returns a filtered page of job definitions
func (h *ScheduledJobHandler) ListJobs(c fiber.Ctx) error {
	req := dto.ListScheduledJobsRequest{
		JobClass: c.Query("job_class"),
	}
	if v := c.Query("enabled"); v != "" {
		enabled := v == "true" || v == "1"
		req.Enabled = &enabled
	}
	if v := c.Query("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			req.Page = p
		}
	}
	if v := c.Query("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			req.Limit = l
		}
	}

	result, err := h.flow.ListJobs(h.createRequestContext(c, "/api/v1/admin/jobs"), &req)
	if err != nil {
		log.Println("List scheduled jobs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list jobs", "JOB_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Jobs retrieved successfully", result)
}

// EnableJob turns dispatching on for one job
func (h *ScheduledJobHandler) EnableJob(c fiber.Ctx) error {
	return h.setEnabled(c, true)
}

// DisableJob turns dispatching off for one job
func (h *ScheduledJobHandler) DisableJob(c fiber.Ctx) error {
	return h.setEnabled(c, false)
}

func (h *ScheduledJobHandler) setEnabled(c fiber.Ctx, enabled bool) error {
	jobID, err := h.jobIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job ID", "INVALID_JOB_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.SetJobEnabled(h.createRequestContext(c, "/api/v1/admin/jobs/:id/enabled"), jobID, enabled, metadata)
	if err != nil {
		if businessflow.IsScheduledJobNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Job not found", "JOB_NOT_FOUND", nil)
		}
		log.Println("Toggle scheduled job failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update job", "JOB_UPDATE_FAILED", nil)
	}

	message := "Job disabled successfully"
	if enabled {
		message = "Job enabled successfully"
	}
	return h.SuccessResponse(c, fiber.StatusOK, message, result)
}

// DeleteJob removes a job definition without execution history
func (h *ScheduledJobHandler) DeleteJob(c fiber.Ctx) error {
	jobID, err := h.jobIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job ID", "INVALID_JOB_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.flow.DeleteJob(h.createRequestContext(c, "/api/v1/admin/jobs/:id"), jobID, metadata); err != nil {
		if businessflow.IsScheduledJobNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Job not found", "JOB_NOT_FOUND", nil)
		}
		if businessflow.IsJobHasExecutionHistory(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Clear the job's execution history first", "JOB_HAS_HISTORY", nil)
		}
		log.Println("Delete scheduled job failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete job", "JOB_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Job deleted successfully", nil)
}

// RunDueJobs triggers one dispatch cycle immediately
func (h *ScheduledJobHandler) RunDueJobs(c fiber.Ctx) error {
	summary, err := h.dispatcher.RunDueJobs(h.createRequestContext(c, "/api/v1/jobs/run"), utils.UTCNow())
	if err != nil {
		log.Println("Manual job dispatch failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to run due jobs", "JOB_DISPATCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Dispatch cycle completed", summary)
}

func (h *ScheduledJobHandler) jobIDParam(c fiber.Ctx) (uint, error) {
	idStr := c.Params("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *ScheduledJobHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ScheduledJobHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
