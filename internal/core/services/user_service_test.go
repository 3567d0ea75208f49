package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/echopind/echopind_backend/internal/adapters/database/memory"
	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/core/services"
	"github.com/echopind/echopind_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type UserServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *testClock
	repo    *memory.UserRepository
	service portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.clock = newTestClock()
	suite.repo = memory.NewUserRepository()
	suite.service = services.NewUserService(suite.repo, services.WithUserClock(suite.clock.Now))
}

func (suite *UserServiceTestSuite) seedUser(name, email string, role domain.Role, school string) domain.User {
	suite.clock.Advance(time.Minute)
	now := suite.clock.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		FullName:     name,
		Email:        email,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehol",
		Role:         role,
		School:       school,
		IsActive:     true,
		AuditFields:  domain.AuditFields{CreatedAt: now, CreatedBy: "seed", LastUpdatedAt: now, LastUpdatedBy: "seed"},
	}
	suite.Require().NoError(suite.repo.SaveUser(suite.ctx, user))
	return user
}

func ptr[T any](v T) *T { return &v }

// --- GetUserByID ---
func (suite *UserServiceTestSuite) TestGetUserByID_NotFound() {
	_, err := suite.service.GetUserByID(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- UpdateProfile ---
func (suite *UserServiceTestSuite) TestUpdateProfile_AppliesOnlySuppliedFields() {
	user := suite.seedUser("Maya Rivers", "maya@echopind.test", domain.RoleStudent, "Riverside High")

	updated, err := suite.service.UpdateProfile(suite.ctx, user.UserID, dto.UpdateProfileRequest{
		FullName:    ptr("  Maya R. Rivers "),
		Grade:       ptr("10"),
		DateOfBirth: ptr("2009-04-12"),
	})
	suite.Require().NoError(err)
	suite.Equal("Maya R. Rivers", updated.FullName)
	suite.Equal("10", updated.Grade)
	suite.Equal("Riverside High", updated.School)
	suite.Require().NotNil(updated.DateOfBirth)
	suite.Equal(time.Date(2009, 4, 12, 0, 0, 0, 0, time.UTC), *updated.DateOfBirth)
	suite.Equal(user.UserID, updated.LastUpdatedBy)

	stored, err := suite.repo.FindUserByID(suite.ctx, user.UserID)
	suite.Require().NoError(err)
	suite.Equal("Maya R. Rivers", stored.FullName)
}

func (suite *UserServiceTestSuite) TestUpdateProfile_EmailTakenByAnotherUser() {
	suite.seedUser("Theo Park", "theo@echopind.test", domain.RoleTeacher, "")
	maya := suite.seedUser("Maya Rivers", "maya@echopind.test", domain.RoleStudent, "")

	_, err := suite.service.UpdateProfile(suite.ctx, maya.UserID, dto.UpdateProfileRequest{Email: ptr("THEO@echopind.test")})
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *UserServiceTestSuite) TestUpdateProfile_EmailIsNormalized() {
	maya := suite.seedUser("Maya Rivers", "maya@echopind.test", domain.RoleStudent, "")

	updated, err := suite.service.UpdateProfile(suite.ctx, maya.UserID, dto.UpdateProfileRequest{Email: ptr(" Maya.R@EchoPind.test ")})
	suite.Require().NoError(err)
	suite.Equal("maya.r@echopind.test", updated.Email)

	_, err = suite.repo.FindUserByEmail(suite.ctx, "maya.r@echopind.test")
	suite.NoError(err)
}

func (suite *UserServiceTestSuite) TestUpdateProfile_InvalidDate() {
	maya := suite.seedUser("Maya Rivers", "maya@echopind.test", domain.RoleStudent, "")

	_, err := suite.service.UpdateProfile(suite.ctx, maya.UserID, dto.UpdateProfileRequest{DateOfBirth: ptr("12/04/2009")})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- ListUsers ---
func (suite *UserServiceTestSuite) TestListUsers_FiltersAndPaginatesNewestFirst() {
	suite.seedUser("Maya Rivers", "maya@echopind.test", domain.RoleStudent, "Riverside High")
	suite.seedUser("Theo Park", "theo@echopind.test", domain.RoleTeacher, "Riverside High")
	ivy := suite.seedUser("Ivy Stone", "ivy@echopind.test", domain.RoleStudent, "Hilltop")
	leo := suite.seedUser("Leo Brook", "leo@echopind.test", domain.RoleStudent, "RIVERSIDE high")

	users, total, err := suite.service.ListUsers(suite.ctx, dto.ListUsersQuery{Page: 1, Limit: 10, Role: "student"})
	suite.Require().NoError(err)
	suite.Equal(3, total)
	suite.Equal(leo.UserID, users[0].UserID)
	suite.Equal(ivy.UserID, users[1].UserID)

	users, total, err = suite.service.ListUsers(suite.ctx, dto.ListUsersQuery{Page: 2, Limit: 1, UserType: "student", Search: "riverside"})
	suite.Require().NoError(err)
	suite.Equal(2, total)
	suite.Require().Len(users, 1)
	suite.Equal("maya@echopind.test", users[0].Email)
}

// --- SetUserStatus ---
func (suite *UserServiceTestSuite) TestSetUserStatus_DeactivationClearsSessions() {
	maya := suite.seedUser("Maya Rivers", "maya@echopind.test", domain.RoleStudent, "")
	now := suite.clock.Now()
	suite.Require().NoError(suite.repo.AddRefreshToken(suite.ctx, maya.UserID,
		domain.RefreshToken{TokenHash: "h1", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}, 5, now))

	updated, err := suite.service.SetUserStatus(suite.ctx, maya.UserID, false, "admin-1")
	suite.Require().NoError(err)
	suite.False(updated.IsActive)
	suite.Equal("admin-1", updated.LastUpdatedBy)

	sessions, err := suite.repo.ListRefreshTokens(suite.ctx, maya.UserID, now)
	suite.Require().NoError(err)
	suite.Empty(sessions)
}

func (suite *UserServiceTestSuite) TestSetUserStatus_UnknownUser() {
	_, err := suite.service.SetUserStatus(suite.ctx, "missing", true, "admin-1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func TestListUsers_StoreErrorPropagates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	storeErr := errors.New("timeout")
	repo.On("FindUsers", ctx, domain.UserFilter{Limit: 10}).Return(nil, 0, storeErr).Once()

	_, _, err := services.NewUserService(repo).ListUsers(ctx, dto.ListUsersQuery{Page: 1, Limit: 10})

	assert.ErrorIs(t, err, storeErr)
	repo.AssertExpectations(t)
}
