package handler

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents a self-registration request
// @Description Request body for seller self-registration
type RegisterRequest struct {
	TenantCode  string `json:"tenant_code" binding:"required,min=2,max=50" example:"acme"`
	Username    string `json:"username" binding:"required,min=3,max=100" example:"seller01"`
	Password    string `json:"password" binding:"required,min=8,max=72" example:"s3cret-pass"`
	Email       string `json:"email" binding:"required,email" example:"seller@example.com"`
	Phone       string `json:"phone" binding:"omitempty,max=20" example:"+15551234567"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100" example:"Seller One"`
}

// RegisterResponse represents the outcome of a registration
// @Description Registration result; the account stays PENDING until approved
type RegisterResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username" example:"seller01"`
	Status   string    `json:"status" example:"PENDING"`
}

// LoginRequest represents a login request
// @Description Request body for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"seller01"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// TokenResponse represents a JWT token pair
// @Description Access and refresh token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type" example:"Bearer"`
}

// AuthUserResponse represents the authenticated user in auth responses
// @Description Authenticated user profile
type AuthUserResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Username    string    `json:"username" example:"seller01"`
	DisplayName string    `json:"display_name,omitempty" example:"Seller One"`
	Email       string    `json:"email,omitempty" example:"seller@example.com"`
	Phone       string    `json:"phone,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Role        string    `json:"role" example:"SELLER"`
	Status      string    `json:"status" example:"ACTIVE"`
}

// LoginResponse represents a successful login
// @Description Login result with token pair and user profile
type LoginResponse struct {
	Token TokenResponse    `json:"token"`
	User  AuthUserResponse `json:"user"`
}

// RefreshTokenRequest represents a token refresh request
// @Description Request body for refreshing the token pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse represents a refreshed token pair
// @Description Token refresh result
type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

// LogoutRequest represents a logout request
// @Description Request body for logout; the refresh token is revoked as well when provided
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents a password change request
// @Description Request body for changing the caller's password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}
