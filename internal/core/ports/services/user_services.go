package services

import (
	"context"

	"github.com/echopind/echopind_backend/internal/core/domain"
	"github.com/echopind/echopind_backend/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers retrieves one page of users matching the query and the total match count.
	ListUsers(ctx context.Context, query dto.ListUsersQuery) ([]domain.User, int, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// UpdateProfile applies the supplied profile fields to the user.
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error)

	// SetUserStatus activates or deactivates a user. Deactivation ends all of its sessions.
	SetUserStatus(ctx context.Context, targetUserID string, isActive bool, requestingUserID string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
}
