package handlers

import (
	"log/slog"
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
	eventGoogleLogin        = "google_login"
	msgGoogleNotConfigured  = "Google sign-in is not available"
	msgGoogleMissingIDToken = "Google did not return an ID token"
)

// googleOAuthHandler handles Google sign-in.
// The frontend obtains an authorization code from Google and posts it to exchange-code;
// the handler trades it for an ID token, verifies it and signs the user in.
type googleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	authService        portssvc.AuthSvcFacade
	metrics            *metrics.Metrics
	analytics          *utils.PosthogClientWrapper
}

func newGoogleOAuthHandler(services *portssvc.ServiceContainer, m *metrics.Metrics, analytics *utils.PosthogClientWrapper) *googleOAuthHandler {
	return &googleOAuthHandler{
		googleOAuthService: services.GoogleOAuthHandler,
		authService:        services.Auth,
		metrics:            m,
		analytics:          analytics,
	}
}

// loginURL godoc
// @Summary Google consent URL
// @Description Returns the Google consent screen URL and the CSRF state the frontend must check on return.
// @Tags oauth
// @Produce json
// @Success 200 {object} dto.GoogleLoginURLResponse
// @Failure 503 {object} ErrorResponse "Google sign-in not configured"
// @Router /auth/google/login [get]
func (h *googleOAuthHandler) loginURL(c *gin.Context) {
	if !h.googleOAuthService.IsConfigured() {
		middleware.AbortWithAppError(c, apperrors.NewServiceUnavailableError(msgGoogleNotConfigured, apperrors.ErrServiceUnavailable))
		return
	}
	ctx := c.Request.Context()
	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GoogleLoginURLResponse{
		URL:   h.googleOAuthService.GetGoogleLoginURL(ctx, state),
		State: state,
	})
}

// exchangeCode godoc
// @Summary Sign in with Google
// @Description Exchanges a Google authorization code, verifies the ID token and returns an application token pair.
// @Tags oauth
// @Accept json
// @Produce json
// @Param code body dto.GoogleExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse "Missing authorization code"
// @Failure 401 {object} ErrorResponse "Code or ID token rejected"
// @Failure 503 {object} ErrorResponse "Google sign-in not configured"
// @Router /auth/google/exchange-code [post]
func (h *googleOAuthHandler) exchangeCode(c *gin.Context) {
	if !h.googleOAuthService.IsConfigured() {
		middleware.AbortWithAppError(c, apperrors.NewServiceUnavailableError(msgGoogleNotConfigured, apperrors.ErrServiceUnavailable))
		return
	}

	var req dto.GoogleExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromContext(c)

	token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, req.Code)
	if err != nil {
		recordOutcome(h.metrics, eventGoogleLogin, err)
		respondError(c, err)
		return
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		logger.Error("ID token missing from Google token response")
		recordOutcome(h.metrics, eventGoogleLogin, apperrors.ErrUnauthorized)
		middleware.AbortWithAppError(c, apperrors.NewUnauthorizedError(msgGoogleMissingIDToken))
		return
	}

	profile, err := h.googleOAuthService.ValidateGoogleIDToken(ctx, idToken)
	if err != nil {
		recordOutcome(h.metrics, eventGoogleLogin, err)
		respondError(c, err)
		return
	}

	result, err := h.authService.LoginWithOAuth(ctx, *profile)
	recordOutcome(h.metrics, eventGoogleLogin, err)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("User signed in with Google", slog.String("user_id", result.User.UserID))
	middleware.PosthogEvent(c, h.analytics, result.User.UserID, "user_logged_in", map[string]any{"auth_method": "google"})
	c.JSON(http.StatusOK, dto.ToAuthResponse("Login successful", result))
}
