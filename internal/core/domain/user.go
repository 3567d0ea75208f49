package domain

import (
	"strings"
	"time"
)

// User represents a registered account on the platform.
type User struct {
	UserID       string     `json:"userID"` // Primary Key (UUID)
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"` // Stored trimmed and lowercased
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	StudentID    string     `json:"studentId,omitempty"`
	School       string     `json:"school,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	ProfilePhoto *string    `json:"profilePhoto,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	// RefreshTokens is only populated by stores that keep sessions inline with the user.
	RefreshTokens []RefreshToken `json:"-"`
	AuditFields
}

// UserProfile carries the optional profile attributes supplied at registration or update.
type UserProfile struct {
	Phone        string
	Address      string
	DateOfBirth  *time.Time
	StudentID    string
	School       string
	Grade        string
	ProfilePhoto *string
}

// Identity returns the request identity derived from the stored user.
func (u *User) Identity() Identity {
	return Identity{
		UserID:   u.UserID,
		Email:    u.Email,
		Role:     u.Role,
		FullName: u.FullName,
		IsActive: u.IsActive,
	}
}

// NormalizeEmail trims and lowercases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserFilter selects users for the admin listing.
type UserFilter struct {
	Role   Role   // RoleUnknown matches every role
	Search string // Case-insensitive substring of full name, email or school
	Limit  int
	Offset int
}
