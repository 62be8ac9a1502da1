package dto

import (
	"time"
)

// AdminLoginRequest represents the request payload for admin login
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"admin@example.com"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AdminLoginResponse represents the successful admin login response
type AdminLoginResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string    `json:"token_type" example:"Bearer"`
	ExpiresIn    int       `json:"expires_in" example:"3600"`
	ExpiresAt    time.Time `json:"expires_at" example:"2025-01-15T16:30:00Z"`
	Admin        AdminInfo `json:"admin"`
}

// AdminInfo represents admin account information returned after login
type AdminInfo struct {
	ID          uint       `json:"id" example:"1"`
	Email       string     `json:"email" example:"admin@example.com"`
	Name        string     `json:"name" example:"Site Admin"`
	IsActive    *bool      `json:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// Common error codes for admin auth operations
const (
	ErrorAdminNotFound     = "ADMIN_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
)
