package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/echopind/echopind_backend/internal/core/domain"
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	"github.com/echopind/echopind_backend/internal/platform/config"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                  "test-access-secret-0123456789abcdef",
		RefreshTokenSecret:         "test-refresh-secret-0123456789abcdef",
		JWTExpiryDuration:          15 * time.Minute,
		RefreshTokenExpiryDuration: 7 * 24 * time.Hour,
		JWTIssuer:                  "echopind-test",
		MaxRefreshTokens:           domain.DefaultMaxRefreshTokens,
		BcryptCost:                 4,
	}
}

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func userOrNil(v any) *domain.User {
	if v == nil {
		return nil
	}
	return v.(*domain.User)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUserRepository) FindUserByRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	args := m.Called(ctx, tokenHash, now)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Int(1), args.Error(2)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

func (m *MockUserRepository) SetUserActive(ctx context.Context, userID string, isActive bool, at time.Time, updatedBy string) (*domain.User, error) {
	args := m.Called(ctx, userID, isActive, at, updatedBy)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) AddRefreshToken(ctx context.Context, userID string, token domain.RefreshToken, maxTokens int, now time.Time) error {
	return m.Called(ctx, userID, token, maxTokens, now).Error(0)
}

func (m *MockUserRepository) RotateRefreshToken(ctx context.Context, userID, oldHash string, next domain.RefreshToken, maxTokens int, now time.Time) error {
	return m.Called(ctx, userID, oldHash, next, maxTokens, now).Error(0)
}

func (m *MockUserRepository) RemoveRefreshToken(ctx context.Context, userID, tokenHash string) error {
	return m.Called(ctx, userID, tokenHash).Error(0)
}

func (m *MockUserRepository) ClearRefreshTokens(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) ListRefreshTokens(ctx context.Context, userID string, now time.Time) ([]domain.RefreshToken, error) {
	args := m.Called(ctx, userID, now)
	var tokens []domain.RefreshToken
	if args.Get(0) != nil {
		tokens = args.Get(0).([]domain.RefreshToken)
	}
	return tokens, args.Error(1)
}
