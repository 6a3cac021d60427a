package identity

import (
	"time"

	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/infrastructure/auth"
)

// ==================== Requests ====================

// RegisterRequest registers a customer
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=100"`
	Mobile   string `json:"mobile" binding:"max=20"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest logs in with an email or a username
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest exchanges a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SendOTPRequest asks for a login code
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest logs in with a login code
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// UpdateProfileRequest changes the caller's profile
type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Mobile string `json:"mobile" binding:"max=20"`
}

// ChangePasswordRequest changes the caller's password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// CreateDeliveryManRequest is used by admins to add a delivery agent
type CreateDeliveryManRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Mobile   string `json:"mobile" binding:"max=20"`
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// UpdateDeliveryManRequest changes a delivery agent. Empty fields are kept;
// a non-empty password resets it.
type UpdateDeliveryManRequest struct {
	Name     string `json:"name" binding:"max=100"`
	Email    string `json:"email" binding:"omitempty,email"`
	Mobile   string `json:"mobile" binding:"max=20"`
	Username string `json:"username" binding:"omitempty,min=3,max=100"`
	Password string `json:"password" binding:"omitempty,min=6,max=72"`
}

// ==================== Responses ====================

// UserResponse is the public view of an account
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Mobile      string     `json:"mobile,omitempty"`
	Username    string     `json:"username,omitempty"`
	Role        string     `json:"role"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthResponse is returned by every successful login
type AuthResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

// OTPSentResponse acknowledges SendOTP
type OTPSentResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToUserResponse maps a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Mobile:      u.Mobile,
		Username:    u.Username,
		Role:        u.Role.String(),
		PhotoURL:    u.PhotoURL,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// ToUserResponses maps a list of users
func ToUserResponses(users []*identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}

func toAuthResponse(pair *auth.TokenPair, u *identity.User) *AuthResponse {
	return &AuthResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(u),
	}
}

func tokenInput(u *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role.String(),
	}
}
