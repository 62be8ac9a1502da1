package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Job engine defaults
const (
	// DefaultReminderLeadHours is how far ahead of a task deadline reminders fire
	DefaultReminderLeadHours = 24

	// DefaultVoucherLeadDays is how many days before the promise day vouchers are issued
	DefaultVoucherLeadDays = 10

	// DefaultAutoBlockAfterDays is how many days past due a pending voucher blocks the account
	DefaultAutoBlockAfterDays = 3

	// DefaultBlockReason is the fixed reason recorded when the engine blocks a student
	DefaultBlockReason = "Fee voucher overdue by 3 or more days"
)

// Pagination constants
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Context keys for request-scoped values set by handlers
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
