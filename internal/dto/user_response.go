package dto

import (
	"time"

	"github.com/echopind/echopind_backend/internal/core/domain"
)

const dateLayout = "2006-01-02"

// UserResponse is the public representation of a user. It never carries the password hash or sessions.
// name, userType and type duplicate fullName and role for clients of the previous API.
type UserResponse struct {
	ID           string     `json:"id"`
	FullName     string     `json:"fullName"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	UserType     string     `json:"userType"`
	Type         string     `json:"type"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	DateOfBirth  *string    `json:"dateOfBirth,omitempty"`
	StudentID    string     `json:"studentId,omitempty"`
	School       string     `json:"school,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	ProfilePhoto *string    `json:"profilePhoto,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ToUserResponse converts a domain user.
func ToUserResponse(user *domain.User) UserResponse {
	role := user.Role.String()
	resp := UserResponse{
		ID:           user.UserID,
		FullName:     user.FullName,
		Name:         user.FullName,
		Email:        user.Email,
		Role:         role,
		UserType:     role,
		Type:         role,
		Phone:        user.Phone,
		Address:      user.Address,
		StudentID:    user.StudentID,
		School:       user.School,
		Grade:        user.Grade,
		ProfilePhoto: user.ProfilePhoto,
		IsActive:     user.IsActive,
		LastLogin:    user.LastLogin,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.LastUpdatedAt,
	}
	if user.DateOfBirth != nil {
		dob := user.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}
