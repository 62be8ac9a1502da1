// Package businessflow contains the core business logic and use cases for job scheduling workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Scheduled job errors
	ErrScheduledJobNotFound   = errors.New("scheduled job not found")
	ErrJobNameAlreadyExists   = errors.New("job name already exists")
	ErrInvalidJobClass        = errors.New("invalid job class")
	ErrInvalidScheduleType    = errors.New("invalid schedule type")
	ErrInvalidScheduleConfig  = errors.New("invalid schedule config")
	ErrJobDisabled            = errors.New("job is disabled")
	ErrJobHasExecutionHistory = errors.New("job has execution history")
	ErrJobUpdateRequired      = errors.New("at least one field must be provided for update")

	// Job log errors
	ErrJobLogNotFound = errors.New("job log not found")

	// Admin auth errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsScheduledJobNotFound(err error) bool {
	return errors.Is(err, ErrScheduledJobNotFound)
}

func IsJobNameAlreadyExists(err error) bool {
	return errors.Is(err, ErrJobNameAlreadyExists)
}

func IsInvalidJobClass(err error) bool {
	return errors.Is(err, ErrInvalidJobClass)
}

func IsInvalidScheduleType(err error) bool {
	return errors.Is(err, ErrInvalidScheduleType)
}

func IsInvalidScheduleConfig(err error) bool {
	return errors.Is(err, ErrInvalidScheduleConfig)
}

func IsJobDisabled(err error) bool {
	return errors.Is(err, ErrJobDisabled)
}

func IsJobHasExecutionHistory(err error) bool {
	return errors.Is(err, ErrJobHasExecutionHistory)
}

func IsJobUpdateRequired(err error) bool {
	return errors.Is(err, ErrJobUpdateRequired)
}

func IsJobLogNotFound(err error) bool {
	return errors.Is(err, ErrJobLogNotFound)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
