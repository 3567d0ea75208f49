package handlers

import (
	"errors"
	"net/http"

	"github.com/echopind/echopind_backend/internal/apperrors"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/dto"
	"github.com/echopind/echopind_backend/internal/middleware"
	"github.com/echopind/echopind_backend/internal/platform/metrics"
	"github.com/echopind/echopind_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	msgRefreshTokenRequired = "Refresh token is required"
	msgUserNotFound         = "User not found"
)

// Auth events recorded in metrics and analytics.
const (
	eventRegister  = "register"
	eventLogin     = "login"
	eventRefresh   = "refresh"
	eventLogout    = "logout"
	eventLogoutAll = "logout_all"
)

// authHandler serves the session endpoints under /auth.
type authHandler struct {
	authService portssvc.AuthSvcFacade
	userService portssvc.UserSvcFacade
	metrics     *metrics.Metrics
	analytics   *utils.PosthogClientWrapper
}

func newAuthHandler(services *portssvc.ServiceContainer, m *metrics.Metrics, analytics *utils.PosthogClientWrapper) *authHandler {
	return &authHandler{
		authService: services.Auth,
		userService: services.User,
		metrics:     m,
		analytics:   analytics,
	}
}

// registerAuthRoutes mounts /auth. Credential-accepting routes sit behind the rate limiter.
func registerAuthRoutes(rg *gin.RouterGroup, deps Dependencies, requireAuth, rateLimit gin.HandlerFunc) {
	h := newAuthHandler(deps.Services, deps.Metrics, deps.Analytics)
	oauth := newGoogleOAuthHandler(deps.Services, deps.Metrics, deps.Analytics)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", rateLimit, h.register)
		auth.POST("/login", rateLimit, h.login)
		auth.POST("/refresh", rateLimit, h.refresh)
		auth.POST("/logout", requireAuth, h.logout)
		auth.POST("/logout-all", requireAuth, h.logoutAll)
		auth.GET("/me", requireAuth, h.me)
		auth.GET("/verify", requireAuth, h.verify)

		google := auth.Group("/google")
		google.GET("/login", oauth.loginURL)
		google.POST("/exchange-code", rateLimit, oauth.exchangeCode)
	}
}

// recordOutcome counts an auth event as success, client failure or server error.
func recordOutcome(m *metrics.Metrics, event string, err error) {
	switch {
	case err == nil:
		m.RecordAuthEvent(event, metrics.OutcomeSuccess)
	case apperrors.FromError(err).Code >= http.StatusInternalServerError:
		m.RecordAuthEvent(event, metrics.OutcomeError)
	default:
		m.RecordAuthEvent(event, metrics.OutcomeFailure)
	}
}

// register godoc
// @Summary Register a new user
// @Description Creates an account and opens its first session.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse "Validation failed or email already registered"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	recordOutcome(h.metrics, eventRegister, err)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.PosthogEvent(c, h.analytics, result.User.UserID, "user_registered", map[string]any{"role": result.User.Role.String()})
	c.JSON(http.StatusCreated, dto.ToAuthResponse("Registration successful", result))
}

// login godoc
// @Summary Log in
// @Description Verifies credentials and returns a token pair. Unknown email and wrong password are indistinguishable.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid credentials or deactivated account"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	recordOutcome(h.metrics, eventLogin, err)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.PosthogEvent(c, h.analytics, result.User.UserID, "user_logged_in", map[string]any{"auth_method": "password"})
	c.JSON(http.StatusOK, dto.ToAuthResponse("Login successful", result))
}

// refresh godoc
// @Summary Refresh tokens
// @Description Redeems a refresh token once and returns a new token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.RefreshResponse
// @Failure 401 {object} ErrorResponse "Missing, invalid, expired or already used refresh token"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *authHandler) refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		recordOutcome(h.metrics, eventRefresh, apperrors.ErrUnauthorized)
		middleware.AbortWithAppError(c, apperrors.NewUnauthorizedError(msgRefreshTokenRequired))
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	recordOutcome(h.metrics, eventRefresh, err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		Message: "Token refreshed successfully",
		Tokens:  dto.ToTokenResponse(result.Tokens),
	})
}

// logout godoc
// @Summary Log out
// @Description Ends the session of the given refresh token. Unknown tokens are ignored.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Refresh token of the session to end"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse "Refresh token missing"
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.AbortWithAppError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	var req dto.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		middleware.AbortWithAppError(c, apperrors.NewBadRequestError(msgRefreshTokenRequired))
		return
	}

	err := h.authService.Logout(c.Request.Context(), userID, req.RefreshToken)
	recordOutcome(h.metrics, eventLogout, err)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.PosthogEvent(c, h.analytics, userID, "user_logged_out", nil)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logout successful"})
}

// logoutAll godoc
// @Summary Log out everywhere
// @Description Ends every session of the caller.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/logout-all [post]
func (h *authHandler) logoutAll(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.AbortWithAppError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	err := h.authService.LogoutAll(c.Request.Context(), userID)
	recordOutcome(h.metrics, eventLogoutAll, err)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.PosthogEvent(c, h.analytics, userID, "user_logged_out_all", nil)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logout from all devices successful"})
}

// me godoc
// @Summary Current user
// @Description Returns the caller's stored profile.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserEnvelope
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *authHandler) me(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.AbortWithAppError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			middleware.AbortWithAppError(c, apperrors.NewNotFoundError(msgUserNotFound))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserEnvelope{User: dto.ToUserResponse(user)})
}

// verify godoc
// @Summary Verify access token
// @Description Reports the identity carried by a valid access token.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.VerifyResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/verify [get]
func (h *authHandler) verify(c *gin.Context) {
	id, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		middleware.AbortWithAppError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}
	c.JSON(http.StatusOK, dto.VerifyResponse{Valid: true, User: dto.ToIdentityResponse(id)})
}
