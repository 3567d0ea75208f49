// Package memory is an in-process credential store used for local development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
)

// UserRepository keeps users and their sessions in maps guarded by one mutex.
// Every method is atomic with respect to every other.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	byEmail map[string]string
}

// Ensure UserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

// NewRepositoryProvider wires a fresh in-memory store.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	repo := NewUserRepository()
	return portsrepo.RepositoryProvider{
		UserRepo: repo,
		Health:   repo,
		Close:    func() {},
	}
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return fmt.Errorf("email %s: %w", email, apperrors.ErrDuplicate)
	}
	if _, exists := r.users[user.UserID]; exists {
		return fmt.Errorf("user %s: %w", user.UserID, apperrors.ErrDuplicate)
	}
	user.Email = email
	r.users[user.UserID] = cloneUser(user)
	r.byEmail[email] = user.UserID
	return nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := cloneUser(r.users[id])
	return &out, nil
}

func (r *UserRepository) FindUserByRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		for _, t := range u.RefreshTokens {
			if t.TokenHash == tokenHash && !t.IsExpired(now) {
				out := cloneUser(u)
				return &out, nil
			}
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *UserRepository) FindUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		if filter.Role != domain.RoleUnknown && u.Role != filter.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.FullName), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(strings.ToLower(u.School), search) {
			continue
		}
		matched = append(matched, u)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].UserID < matched[j].UserID
	})

	total := len(matched)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	page := make([]domain.User, 0, end-start)
	for _, u := range matched[start:end] {
		page = append(page, cloneUser(u))
	}
	return page, total, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.UserID]
	if !ok {
		return apperrors.ErrNotFound
	}
	email := domain.NormalizeEmail(user.Email)
	if owner, taken := r.byEmail[email]; taken && owner != user.UserID {
		return fmt.Errorf("email %s: %w", email, apperrors.ErrDuplicate)
	}

	delete(r.byEmail, current.Email)
	current.FullName = user.FullName
	current.Email = email
	current.Phone = user.Phone
	current.Address = user.Address
	current.DateOfBirth = cloneTime(user.DateOfBirth)
	current.StudentID = user.StudentID
	current.School = user.School
	current.Grade = user.Grade
	current.ProfilePhoto = cloneString(user.ProfilePhoto)
	current.LastUpdatedAt = user.LastUpdatedAt
	current.LastUpdatedBy = user.LastUpdatedBy
	r.users[user.UserID] = current
	r.byEmail[email] = user.UserID
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.mutate(userID, func(u *domain.User) error {
		u.LastLogin = &at
		return nil
	})
}

func (r *UserRepository) SetUserActive(ctx context.Context, userID string, isActive bool, at time.Time, updatedBy string) (*domain.User, error) {
	var out domain.User
	err := r.mutate(userID, func(u *domain.User) error {
		u.IsActive = isActive
		if !isActive {
			u.RefreshTokens = nil
		}
		u.LastUpdatedAt = at
		u.LastUpdatedBy = updatedBy
		out = cloneUser(*u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.users, userID)
	return nil
}

func (r *UserRepository) AddRefreshToken(ctx context.Context, userID string, token domain.RefreshToken, maxTokens int, now time.Time) error {
	return r.mutate(userID, func(u *domain.User) error {
		u.RefreshTokens = domain.AppendRefreshToken(u.RefreshTokens, token, maxTokens, now)
		return nil
	})
}

func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID, oldHash string, next domain.RefreshToken, maxTokens int, now time.Time) error {
	return r.mutate(userID, func(u *domain.User) error {
		live := domain.ActiveRefreshTokens(u.RefreshTokens, now)
		remaining, found := domain.RemoveRefreshToken(live, oldHash)
		if !found {
			return apperrors.ErrNotFound
		}
		u.RefreshTokens = domain.AppendRefreshToken(remaining, next, maxTokens, now)
		return nil
	})
}

func (r *UserRepository) RemoveRefreshToken(ctx context.Context, userID, tokenHash string) error {
	err := r.mutate(userID, func(u *domain.User) error {
		u.RefreshTokens, _ = domain.RemoveRefreshToken(u.RefreshTokens, tokenHash)
		return nil
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

func (r *UserRepository) ClearRefreshTokens(ctx context.Context, userID string) error {
	return r.mutate(userID, func(u *domain.User) error {
		u.RefreshTokens = nil
		return nil
	})
}

func (r *UserRepository) ListRefreshTokens(ctx context.Context, userID string, now time.Time) ([]domain.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return domain.ActiveRefreshTokens(u.RefreshTokens, now), nil
}

// mutate applies fn to a copy of the user and stores it only if fn succeeds.
func (r *UserRepository) mutate(userID string, fn func(u *domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u = cloneUser(u)
	if err := fn(&u); err != nil {
		return err
	}
	r.users[userID] = u
	return nil
}

func cloneUser(u domain.User) domain.User {
	u.DateOfBirth = cloneTime(u.DateOfBirth)
	u.LastLogin = cloneTime(u.LastLogin)
	u.ProfilePhoto = cloneString(u.ProfilePhoto)
	if u.RefreshTokens != nil {
		u.RefreshTokens = append([]domain.RefreshToken(nil), u.RefreshTokens...)
	}
	return u
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
