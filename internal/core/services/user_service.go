package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/dto"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	now      func() time.Time
}

// UserServiceOption configures a userService.
type UserServiceOption func(*userService)

// WithUserClock replaces time.Now for audit timestamps.
func WithUserClock(now func() time.Time) UserServiceOption {
	return func(s *userService) {
		s.now = now
	}
}

func NewUserService(userRepo portsrepo.UserRepositoryFacade, opts ...UserServiceOption) portssvc.UserSvcFacade {
	s := &userService{userRepo: userRepo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, query dto.ListUsersQuery) ([]domain.User, int, error) {
	filter, err := query.Filter()
	if err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.FindUsers(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, 0, err
	}
	return users, total, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		if email != user.Email {
			existing, err := s.userRepo.FindUserByEmail(ctx, email)
			switch {
			case err == nil && existing.UserID != user.UserID:
				return nil, fmt.Errorf("update email of %s: %w", userID, apperrors.ErrDuplicate)
			case err != nil && !errors.Is(err, apperrors.ErrNotFound):
				s.LogError(ctx, err, "Failed to check email availability", slog.String("user_id", userID))
				return nil, err
			}
			user.Email = email
		}
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.DateOfBirth != nil {
		dob, err := dto.ParseDate(req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		user.DateOfBirth = dob
	}
	if req.StudentID != nil {
		user.StudentID = *req.StudentID
	}
	if req.School != nil {
		user.School = *req.School
	}
	if req.Grade != nil {
		user.Grade = *req.Grade
	}
	if req.ProfilePhoto != nil {
		photo := *req.ProfilePhoto
		user.ProfilePhoto = &photo
	}
	user.LastUpdatedAt = s.now()
	user.LastUpdatedBy = userID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update profile", slog.String("user_id", userID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Profile updated", slog.String("user_id", userID))
	return user, nil
}

func (s *userService) SetUserStatus(ctx context.Context, targetUserID string, isActive bool, requestingUserID string) (*domain.User, error) {
	user, err := s.userRepo.SetUserActive(ctx, targetUserID, isActive, s.now(), requestingUserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update user status", slog.String("target_user_id", targetUserID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "User status updated",
		slog.String("target_user_id", targetUserID),
		slog.Bool("is_active", isActive),
		slog.String("by", requestingUserID))
	return user, nil
}
