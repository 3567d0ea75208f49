package dto

import (
	"time"

	"github.com/echopind/echopind_backend/internal/core/domain"
)

// RegisterRequest is the body of POST /auth/register.
// userType is accepted as an alias of role for older clients.
type RegisterRequest struct {
	FullName    string  `json:"fullName" binding:"required,min=2,max=50"`
	Email       string  `json:"email" binding:"required,email,max=254"`
	Password    string  `json:"password" binding:"required,min=6,max=72"`
	Role        string  `json:"role" binding:"omitempty,role"`
	UserType    string  `json:"userType" binding:"omitempty,role"`
	Phone       string  `json:"phone" binding:"omitempty,max=20"`
	Address     string  `json:"address" binding:"omitempty,max=200"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,isodate"`
	StudentID   string  `json:"studentId" binding:"omitempty,max=50"`
	School      string  `json:"school" binding:"omitempty,max=100"`
	Grade       string  `json:"grade" binding:"omitempty,max=20"`
}

// ResolveRole returns the requested role, defaulting to student.
func (r RegisterRequest) ResolveRole() (domain.Role, error) {
	name := r.Role
	if name == "" {
		name = r.UserType
	}
	if name == "" {
		return domain.DefaultRole, nil
	}
	return domain.ParseRole(name)
}

// Profile extracts the optional profile attributes.
func (r RegisterRequest) Profile() (domain.UserProfile, error) {
	dob, err := ParseDate(r.DateOfBirth)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return domain.UserProfile{
		Phone:       r.Phone,
		Address:     r.Address,
		DateOfBirth: dob,
		StudentID:   r.StudentID,
		School:      r.School,
		Grade:       r.Grade,
	}, nil
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest is the body of POST /auth/refresh and POST /auth/logout.
// Presence is checked by the handler so the error message stays specific.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// GoogleExchangeCodeRequest is the body of POST /auth/google/exchange-code.
type GoogleExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// TokenResponse is the token bundle returned after authentication.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // Seconds until the access token expires
}

// ToTokenResponse converts a domain token pair.
func ToTokenResponse(p domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    int64(p.ExpiresIn / time.Second),
	}
}

// AuthResponse is returned by register, login and Google sign-in.
type AuthResponse struct {
	Message string        `json:"message"`
	User    UserResponse  `json:"user"`
	Tokens  TokenResponse `json:"tokens"`
}

// ToAuthResponse converts a domain authentication result.
func ToAuthResponse(message string, result *domain.AuthResult) AuthResponse {
	return AuthResponse{
		Message: message,
		User:    ToUserResponse(result.User),
		Tokens:  ToTokenResponse(result.Tokens),
	}
}

// RefreshResponse is returned by POST /auth/refresh.
type RefreshResponse struct {
	Message string        `json:"message"`
	Tokens  TokenResponse `json:"tokens"`
}

// IdentityResponse is the caller identity reported by GET /auth/verify.
type IdentityResponse struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	UserType string `json:"userType"`
	FullName string `json:"fullName"`
	IsActive bool   `json:"isActive"`
}

// ToIdentityResponse converts a request identity.
func ToIdentityResponse(id domain.Identity) IdentityResponse {
	return IdentityResponse{
		UserID:   id.UserID,
		Email:    id.Email,
		Role:     id.Role.String(),
		UserType: id.Role.String(),
		FullName: id.FullName,
		IsActive: id.IsActive,
	}
}

// VerifyResponse is returned by GET /auth/verify.
type VerifyResponse struct {
	Valid bool             `json:"valid"`
	User  IdentityResponse `json:"user"`
}

// GoogleLoginURLResponse is returned by GET /auth/google/login.
type GoogleLoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// MessageResponse is a body carrying only a human readable message.
type MessageResponse struct {
	Message string `json:"message"`
}
