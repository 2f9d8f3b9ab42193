package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds the student's upstream credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the dashboard token and the new session status.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"token_expires_at"`
	Session   SessionStatus `json:"session"`
}

// DashboardClaims is the payload of tokens issued to dashboard clients.
type DashboardClaims struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}
