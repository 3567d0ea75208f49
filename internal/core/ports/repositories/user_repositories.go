package repositories

import (
	"context"
	"time"

	"github.com/echopind/echopind_backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by id. Returns apperrors.ErrNotFound if absent.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by normalized email. Returns apperrors.ErrNotFound if absent.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByRefreshToken returns the owner of a non-expired session with the given digest.
	FindUserByRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)

	// FindUsers returns one page of users ordered by creation time, newest first, and the total match count.
	FindUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user. Returns apperrors.ErrDuplicate if the email is taken.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser overwrites the profile fields and email of an existing user.
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdateLastLogin records a successful authentication.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// SetUserActive changes the active flag. Deactivation clears every session in the same atomic write.
	SetUserActive(ctx context.Context, userID string, isActive bool, at time.Time, updatedBy string) (*domain.User, error)
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// DeleteUser removes the user and all of its sessions.
	DeleteUser(ctx context.Context, userID string) error
}

// RefreshTokenStore manages the bounded session list of a user.
// Every method is a single atomic write per user.
type RefreshTokenStore interface {
	// AddRefreshToken purges expired sessions, appends token and keeps only the newest maxTokens.
	AddRefreshToken(ctx context.Context, userID string, token domain.RefreshToken, maxTokens int, now time.Time) error

	// RotateRefreshToken replaces oldHash with next. Returns apperrors.ErrNotFound if oldHash is
	// not a live session, which is how a concurrent second redemption of the same token loses.
	RotateRefreshToken(ctx context.Context, userID, oldHash string, next domain.RefreshToken, maxTokens int, now time.Time) error

	// RemoveRefreshToken deletes one session. Removing an unknown digest is not an error.
	RemoveRefreshToken(ctx context.Context, userID, tokenHash string) error

	// ClearRefreshTokens deletes every session of the user.
	ClearRefreshTokens(ctx context.Context, userID string) error

	// ListRefreshTokens returns the live sessions, oldest first.
	ListRefreshTokens(ctx context.Context, userID string, now time.Time) ([]domain.RefreshToken, error)
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
	RefreshTokenStore
}
