package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/echopind/echopind_backend/internal/adapters/database/memory"
	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/core/services"
	"github.com/echopind/echopind_backend/internal/dto"
	"github.com/echopind/echopind_backend/internal/handlers"
	"github.com/echopind/echopind_backend/internal/middleware"
	"github.com/echopind/echopind_backend/internal/platform/config"
	"github.com/echopind/echopind_backend/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreDriver:                config.StoreDriverMemory,
		JWTSecret:                  "handler-test-access-secret-0123456789",
		JWTExpiryDuration:          15 * time.Minute,
		JWTIssuer:                  "echopind-test",
		RefreshTokenSecret:         "handler-test-refresh-secret-0123456789",
		RefreshTokenExpiryDuration: 7 * 24 * time.Hour,
		MaxRefreshTokens:           5,
		BcryptCost:                 4,
		RequestTimeout:             5 * time.Second,
		AuthRateLimit:              "1000-M",
		AllowedOrigins:             []string{"http://localhost:3000"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// HandlerTestSuite drives the real router over the in-memory store.
type HandlerTestSuite struct {
	suite.Suite
	cfg      *config.Config
	services *portssvc.ServiceContainer
	metrics  *metrics.Metrics
	router   *gin.Engine
}

func (s *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *HandlerTestSuite) SetupTest() {
	s.cfg = testConfig()
	repos := memory.NewRepositoryProvider()
	s.services = services.NewServiceContainer(s.cfg, repos)
	s.metrics = metrics.New()

	router, err := handlers.NewRouter(handlers.Dependencies{
		Config:   s.cfg,
		Services: s.services,
		Health:   repos.Health,
		Metrics:  s.metrics,
		Logger:   discardLogger(),
	})
	s.Require().NoError(err)
	s.router = router
}

func (s *HandlerTestSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	return serve(s.T(), s.router, method, path, body, token)
}

func serve(t *testing.T, router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](s *HandlerTestSuite, w *httptest.ResponseRecorder) T {
	var v T
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *HandlerTestSuite) register(email, role string) dto.AuthResponse {
	w := s.do(http.MethodPost, "/api/auth/register", map[string]any{
		"fullName": "Test " + role,
		"email":    email,
		"password": "secret1",
		"role":     role,
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.AuthResponse](s, w)
}

func (s *HandlerTestSuite) TestLoginProfileRefreshFlow() {
	registered := s.register("a@x.com", "student")
	s.Equal("Registration successful", registered.Message)
	s.Equal("student", registered.User.Role)
	s.Equal(int64(900), registered.Tokens.ExpiresIn)

	w := s.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "wrongpass"}, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	errBody := decode[handlers.ErrorResponse](s, w)
	s.Equal(apperrors.CategoryUnauthenticated, errBody.Error)
	s.Equal("Invalid email or password", errBody.Message)

	w = s.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "secret1"}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	login := decode[dto.AuthResponse](s, w)
	s.Equal("Login successful", login.Message)
	s.NotEmpty(login.Tokens.AccessToken)
	s.NotEmpty(login.Tokens.RefreshToken)

	w = s.do(http.MethodGet, "/api/user/profile", nil, login.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("a@x.com", decode[dto.UserEnvelope](s, w).User.Email)

	w = s.do(http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: login.Tokens.RefreshToken}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	refreshed := decode[dto.RefreshResponse](s, w)
	s.Equal("Token refreshed successfully", refreshed.Message)
	s.NotEqual(login.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	w = s.do(http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: login.Tokens.RefreshToken}, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: refreshed.Tokens.RefreshToken}, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestAdminRouteGating() {
	student := s.register("student@x.com", "student")

	w := s.do(http.MethodGet, "/api/user/all", nil, student.Tokens.AccessToken)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apperrors.CategoryForbidden, decode[handlers.ErrorResponse](s, w).Error)

	w = s.do(http.MethodGet, "/api/user/all", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	body := decode[handlers.ErrorResponse](s, w)
	s.Equal(apperrors.CategoryUnauthenticated, body.Error)
	s.Equal("No token provided", body.Message)

	w = s.do(http.MethodGet, "/api/user/all", nil, "not-a-jwt")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid token", decode[handlers.ErrorResponse](s, w).Message)
}

func (s *HandlerTestSuite) TestAdminListUsers() {
	admin := s.register("admin@x.com", "admin")
	s.register("green@x.com", "student")
	s.register("teach@x.com", "teacher")

	w := s.do(http.MethodGet, "/api/user/all?limit=2", nil, admin.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	page := decode[dto.ListUsersResponse](s, w)
	s.Len(page.Users, 2)
	s.Equal(dto.PaginationResponse{CurrentPage: 1, TotalPages: 2, TotalUsers: 3, HasNext: true}, page.Pagination)

	w = s.do(http.MethodGet, "/api/user/all?role=teacher", nil, admin.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	page = decode[dto.ListUsersResponse](s, w)
	s.Require().Len(page.Users, 1)
	s.Equal("teach@x.com", page.Users[0].Email)

	w = s.do(http.MethodGet, "/api/user/all?search=GREEN", nil, admin.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(decode[dto.ListUsersResponse](s, w).Users, 1)

	w = s.do(http.MethodGet, "/api/user/all?limit=500", nil, admin.Tokens.AccessToken)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestDeactivationEndsSessions() {
	admin := s.register("admin@x.com", "admin")
	student := s.register("student@x.com", "student")

	path := "/api/user/" + student.User.ID + "/status"
	w := s.do(http.MethodPut, path, map[string]any{"isActive": false}, admin.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	resp := decode[dto.UserMessageResponse](s, w)
	s.Equal("User deactivated successfully", resp.Message)
	s.False(resp.User.IsActive)

	w = s.do(http.MethodGet, "/api/auth/me", nil, student.Tokens.AccessToken)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid token or user not found", decode[handlers.ErrorResponse](s, w).Message)

	w = s.do(http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: student.Tokens.RefreshToken}, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "student@x.com", Password: "secret1"}, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Account is deactivated", decode[handlers.ErrorResponse](s, w).Message)

	w = s.do(http.MethodPut, path, map[string]any{"isActive": true}, admin.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("User activated successfully", decode[dto.UserMessageResponse](s, w).Message)

	w = s.do(http.MethodPut, "/api/user/missing/status", map[string]any{"isActive": true}, admin.Tokens.AccessToken)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, path, map[string]any{}, admin.Tokens.AccessToken)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestRegisterValidationDetails() {
	w := s.do(http.MethodPost, "/api/auth/register", map[string]any{
		"fullName": "A",
		"email":    "not-an-email",
		"password": "123",
		"role":     "wizard",
	}, "")
	s.Require().Equal(http.StatusBadRequest, w.Code)
	body := decode[handlers.ErrorResponse](s, w)
	s.Equal(apperrors.CategoryValidation, body.Error)
	s.Equal("Please correct the following errors", body.Message)

	fields := map[string]bool{}
	for _, d := range body.Details {
		fields[d.Field] = true
	}
	s.Equal(map[string]bool{"fullName": true, "email": true, "password": true, "role": true}, fields)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid request body", decode[handlers.ErrorResponse](s, rec).Message)
}

func (s *HandlerTestSuite) TestRegisterDuplicateEmail() {
	s.register("dup@x.com", "student")

	w := s.do(http.MethodPost, "/api/auth/register", map[string]any{
		"fullName": "Other Person",
		"email":    "DUP@x.com",
		"password": "secret1",
	}, "")
	s.Equal(http.StatusBadRequest, w.Code)
	body := decode[handlers.ErrorResponse](s, w)
	s.Equal(apperrors.CategoryDuplicate, body.Error)
	s.Equal("User with this email already exists", body.Message)
}

func (s *HandlerTestSuite) TestLogoutAndLogoutAll() {
	first := s.register("multi@x.com", "teacher")
	w := s.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "multi@x.com", Password: "secret1"}, "")
	s.Require().Equal(http.StatusOK, w.Code)
	second := decode[dto.AuthResponse](s, w)

	w = s.do(http.MethodPost, "/api/auth/logout", map[string]any{}, first.Tokens.AccessToken)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Refresh token is required", decode[handlers.ErrorResponse](s, w).Message)

	w = s.do(http.MethodPost, "/api/auth/logout", dto.RefreshTokenRequest{RefreshToken: first.Tokens.RefreshToken}, first.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Logout successful", decode[dto.MessageResponse](s, w).Message)

	w = s.do(http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: first.Tokens.RefreshToken}, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/logout-all", nil, second.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Logout from all devices successful", decode[dto.MessageResponse](s, w).Message)

	w = s.do(http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: second.Tokens.RefreshToken}, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/refresh", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Refresh token is required", decode[handlers.ErrorResponse](s, w).Message)
}

func (s *HandlerTestSuite) TestVerifyAndMe() {
	reg := s.register("verify@x.com", "teacher")

	w := s.do(http.MethodGet, "/api/auth/verify", nil, reg.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	verify := decode[dto.VerifyResponse](s, w)
	s.True(verify.Valid)
	s.Equal(reg.User.ID, verify.User.UserID)
	s.Equal("teacher", verify.User.Role)

	w = s.do(http.MethodGet, "/api/auth/me", nil, reg.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("verify@x.com", decode[dto.UserEnvelope](s, w).User.Email)
}

func (s *HandlerTestSuite) TestUpdateProfile() {
	first := s.register("first@x.com", "student")
	s.register("taken@x.com", "student")

	w := s.do(http.MethodPut, "/api/user/profile", map[string]any{
		"fullName":    "Renamed Student",
		"school":      "Riverside Academy",
		"dateOfBirth": "2010-04-23",
	}, first.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	resp := decode[dto.UserMessageResponse](s, w)
	s.Equal("Profile updated successfully", resp.Message)
	s.Equal("Renamed Student", resp.User.FullName)
	s.Equal("Riverside Academy", resp.User.School)

	w = s.do(http.MethodPut, "/api/user/profile", map[string]any{"email": "Taken@x.com"}, first.Tokens.AccessToken)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.CategoryDuplicate, decode[handlers.ErrorResponse](s, w).Error)

	w = s.do(http.MethodPut, "/api/user/profile", map[string]any{"dateOfBirth": "23/04/2010"}, first.Tokens.AccessToken)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.CategoryValidation, decode[handlers.ErrorResponse](s, w).Error)
}

func (s *HandlerTestSuite) TestDeleteAccount() {
	reg := s.register("leaving@x.com", "student")

	w := s.do(http.MethodDelete, "/api/user/account", map[string]any{}, reg.Tokens.AccessToken)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Password is required to delete account", decode[handlers.ErrorResponse](s, w).Message)

	w = s.do(http.MethodDelete, "/api/user/account", dto.DeleteAccountRequest{Password: "wrong-one"}, reg.Tokens.AccessToken)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid password", decode[handlers.ErrorResponse](s, w).Message)

	w = s.do(http.MethodDelete, "/api/user/account", dto.DeleteAccountRequest{Password: "secret1"}, reg.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Account deleted successfully", decode[dto.MessageResponse](s, w).Message)

	w = s.do(http.MethodGet, "/api/user/profile", nil, reg.Tokens.AccessToken)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "leaving@x.com", Password: "secret1"}, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestLeaderboardPreviewOptionalAuth() {
	w := s.do(http.MethodGet, "/api/leaderboard/preview", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	anon := decode[handlers.LeaderboardPreviewResponse](s, w)
	s.NotEmpty(anon.Entries)
	s.Nil(anon.Viewer)

	w = s.do(http.MethodGet, "/api/leaderboard/preview", nil, "garbage")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Nil(decode[handlers.LeaderboardPreviewResponse](s, w).Viewer)

	reg := s.register("viewer@x.com", "student")
	w = s.do(http.MethodGet, "/api/leaderboard/preview", nil, reg.Tokens.AccessToken)
	s.Require().Equal(http.StatusOK, w.Code)
	viewer := decode[handlers.LeaderboardPreviewResponse](s, w).Viewer
	s.Require().NotNil(viewer)
	s.Equal("viewer@x.com", viewer.Email)
}

func (s *HandlerTestSuite) TestHealthMetricsAndRequestID() {
	w := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", decode[handlers.HealthResponse](s, w).Status)
	s.NotEmpty(w.Header().Get(middleware.RequestIDHeader))

	s.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "nobody@x.com", Password: "secret1"}, "")
	w = s.do(http.MethodGet, "/metrics", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `echopind_auth_events_total{event="login",outcome="failure"} 1`)
}

func (s *HandlerTestSuite) TestGoogleSignInUnavailable() {
	w := s.do(http.MethodGet, "/api/auth/google/login", nil, "")
	s.Equal(http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodPost, "/api/auth/google/exchange-code", dto.GoogleExchangeCodeRequest{Code: "abc"}, "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal(apperrors.CategoryServiceUnavailable, decode[handlers.ErrorResponse](s, w).Error)
}

func (s *HandlerTestSuite) TestSwaggerServedOutsideProduction() {
	w := s.do(http.MethodGet, "/swagger/doc.json", nil, "")
	s.Equal(http.StatusOK, w.Code)
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

type failingHealth struct{}

func (failingHealth) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsStoreOutage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	router, err := handlers.NewRouter(handlers.Dependencies{
		Config:   cfg,
		Services: services.NewServiceContainer(cfg, memory.NewRepositoryProvider()),
		Health:   failingHealth{},
		Logger:   discardLogger(),
	})
	require.NoError(t, err)

	w := serve(t, router, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lim, err := middleware.NewRateLimiter("2-M", client)
	require.NoError(t, err)

	cfg := testConfig()
	router, err := handlers.NewRouter(handlers.Dependencies{
		Config:      cfg,
		Services:    services.NewServiceContainer(cfg, memory.NewRepositoryProvider()),
		AuthLimiter: lim,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)

	creds := dto.LoginRequest{Email: "nobody@x.com", Password: "secret1"}
	for i := 0; i < 2; i++ {
		w := serve(t, router, http.MethodPost, "/api/auth/login", creds, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := serve(t, router, http.MethodPost, "/api/auth/login", creds, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, apperrors.CategoryTooManyRequests, body.Error)

	// Other routes keep their own allowance.
	w = serve(t, router, http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "x"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

// MockAuthService lets tests force service failures.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) result(args mock.Arguments) (*domain.AuthResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.AuthResult, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockAuthService) Login(ctx context.Context, req dto.LoginRequest) (*domain.AuthResult, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	return m.result(m.Called(ctx, refreshToken))
}

func (m *MockAuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	return m.Called(ctx, userID, refreshToken).Error(0)
}

func (m *MockAuthService) LogoutAll(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAuthService) DeleteAccount(ctx context.Context, userID, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}

func (m *MockAuthService) LoginWithOAuth(ctx context.Context, profile domain.OAuthProfile) (*domain.AuthResult, error) {
	return m.result(m.Called(ctx, profile))
}

var _ portssvc.AuthSvcFacade = (*MockAuthService)(nil)

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	svc := services.NewServiceContainer(cfg, memory.NewRepositoryProvider())
	authMock := new(MockAuthService)
	authMock.On("Login", mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")).Once()
	svc.Auth = authMock

	router, err := handlers.NewRouter(handlers.Dependencies{Config: cfg, Services: svc, Logger: discardLogger()})
	require.NoError(t, err)

	w := serve(t, router, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "secret1"}, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "10.0.0.5")

	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, apperrors.CategoryInternal, body.Error)
	require.Equal(t, apperrors.GenericInternalMessage, body.Message)
	authMock.AssertExpectations(t)
}

func TestRegisterLogsOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	svc := services.NewServiceContainer(cfg, memory.NewRepositoryProvider())

	router, err := handlers.NewRouter(handlers.Dependencies{Config: cfg, Services: svc, Logger: logger})
	require.NoError(t, err)

	w := serve(t, router, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		FullName: "Maya Rivers",
		Email:    "maya@echopind.test",
		Password: "green-planet-42",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, 1, strings.Count(logs.String(), `"msg":"User registered"`), logs.String())
}
