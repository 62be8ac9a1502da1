// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/dto"
	businessflow "github.com/RehanRiaz5383/lms-v2-sub002/business_flow"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// JobLogHandlerInterface defines the contract for execution history handlers
type JobLogHandlerInterface interface {
	ListLogs(cCtx fiber.Ctx) error
	GetLog(cCtx fiber.Ctx) error
	ClearLogs(cCtx fiber.Ctx) error
	DownloadLogs(cCtx fiber.Ctx) error
}

// JobLogHandler implements JobLogHandlerInterface
type JobLogHandler struct {
	flow      businessflow.JobLogFlow
	validator *validator.Validate
}

func NewJobLogHandler(flow businessflow.JobLogFlow) JobLogHandlerInterface {
	return &JobLogHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *JobLogHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *JobLogHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListLogs returns a filtered page of execution records
func (h *JobLogHandler) ListLogs(c fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	result, err := h.flow.ListLogs(h.createRequestContext(c, "/api/v1/admin/job-logs"), req)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "date_from cannot be after date_to", "INVALID_DATE_RANGE", nil)
		}
		log.Println("List job logs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list job logs", "JOB_LOG_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Job logs retrieved successfully", result)
}

// GetLog returns one execution record by ID
func (h *JobLogHandler) GetLog(c fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job log ID", "INVALID_JOB_LOG_ID", nil)
	}

	result, err := h.flow.GetLog(h.createRequestContext(c, "/api/v1/admin/job-logs/:id"), uint(id))
	if err != nil {
		if businessflow.IsJobLogNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Job log not found", "JOB_LOG_NOT_FOUND", nil)
		}
		log.Println("Get job log failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get job log", "JOB_LOG_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Job log retrieved successfully", result)
}

// ClearLogs purges every execution record of one job
func (h *JobLogHandler) ClearLogs(c fiber.Ctx) error {
	var req dto.ClearJobLogsRequest
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
	result, err := h.flow.ClearLogs(h.createRequestContext(c, "/api/v1/admin/job-logs/clear"), &req, metadata)
	if err != nil {
		if businessflow.IsScheduledJobNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Job not found", "JOB_NOT_FOUND", nil)
		}
		log.Println("Clear job logs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to clear job logs", "JOB_LOG_CLEAR_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Job logs cleared successfully", result)
}

// DownloadLogs exports the filtered execution history as an Excel workbook
func (h *JobLogHandler) DownloadLogs(c fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	filename, data, err := h.flow.DownloadLogsExcel(h.createRequestContext(c, "/api/v1/admin/job-logs/download"), req)
	if err != nil {
		log.Println("Download job logs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate Excel", "DOWNLOAD_FAILED", nil)
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *JobLogHandler) parseListRequest(c fiber.Ctx) (*dto.ListJobLogsRequest, error) {
	req := &dto.ListJobLogsRequest{
		JobClass: c.Query("job_class"),
		Status:   c.Query("status"),
	}
	if v := c.Query("scheduled_job_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, err
		}
		jid := uint(id)
		req.ScheduledJobID = &jid
	}
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		req.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		req.DateTo = &t
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
	return req, nil
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *JobLogHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *JobLogHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
