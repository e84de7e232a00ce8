package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued session token and account info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        UserInfo  `json:"user"`
}

// ChangePasswordRequest payload for a self-service password change.
// The current password is re-verified before the new one is accepted.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password_strength"`
}

// ResetPasswordRequest payload for an administrative password reset.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,password_strength"`
}

// UserInfo describes the authenticated account in responses.
type UserInfo struct {
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Role        UserRole `json:"role"`
	Department  string   `json:"department"`
	AccessLevel string   `json:"access_level"`
}

// JWTClaims represents the JWT payload for session tokens.
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	Role        UserRole `json:"role"`
	DisplayName string   `json:"display_name"`
	jwt.RegisteredClaims
}
