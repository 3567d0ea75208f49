package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

const (
	msgNoToken          = "No token provided"
	msgInvalidToken     = "Invalid token"
	msgTokenExpired     = "Token expired"
	msgUserNotFound     = "Invalid token or user not found"
	msgAuthFailed       = "Authentication failed"
	msgNotAuthenticated = "User not authenticated"
	msgForbidden        = "Insufficient permissions"
)

// authFailure is a rejected authentication attempt ready to be sent to the client.
type authFailure struct {
	appErr *apperrors.AppError
	reason string
	err    error
}

// AbortWithAppError writes err in the standard error shape and stops the chain.
func AbortWithAppError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.Code, err)
}

// bearerToken extracts the credential of an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authenticate verifies the bearer token and loads its live owner from the store.
func authenticate(c *gin.Context, tokens portssvc.TokenSvcFacade, users portssvc.UserReaderSvc) (*domain.User, *authFailure) {
	tokenString, ok := bearerToken(c)
	if !ok {
		return nil, &authFailure{appErr: apperrors.NewUnauthorizedError(msgNoToken), reason: "missing bearer token"}
	}

	ctx := c.Request.Context()
	claims, err := tokens.ValidateAccessToken(ctx, tokenString)
	if err != nil {
		msg := msgInvalidToken
		if errors.Is(err, apperrors.ErrTokenExpired) {
			msg = msgTokenExpired
		}
		return nil, &authFailure{appErr: apperrors.NewUnauthorizedError(msg), reason: "token rejected", err: err}
	}

	user, err := users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, &authFailure{appErr: apperrors.NewUnauthorizedError(msgUserNotFound), reason: "token owner not found"}
		}
		return nil, &authFailure{
			appErr: apperrors.NewAppError(http.StatusInternalServerError, msgAuthFailed, err),
			reason: "failed to load token owner",
			err:    err,
		}
	}
	if !user.IsActive {
		return nil, &authFailure{appErr: apperrors.NewUnauthorizedError(msgUserNotFound), reason: "token owner deactivated"}
	}
	return user, nil
}

// attachIdentity stores the caller in the request context and enriches the request logger.
func attachIdentity(c *gin.Context, user *domain.User) {
	ctx := WithIdentity(c.Request.Context(), user.Identity())
	c.Request = c.Request.WithContext(ctx)
	setRequestLogger(c, GetLoggerFromCtx(ctx).With(slog.String("user_id", user.UserID)))
}

// AuthMiddleware requires a valid access token whose owner still exists and is active.
func AuthMiddleware(tokens portssvc.TokenSvcFacade, users portssvc.UserReaderSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, failure := authenticate(c, tokens, users)
		if failure != nil {
			logger := GetLoggerFromCtx(c.Request.Context())
			attrs := []any{slog.String("reason", failure.reason)}
			if failure.err != nil {
				attrs = append(attrs, slog.String("error", failure.err.Error()))
			}
			if failure.appErr.Code >= http.StatusInternalServerError {
				logger.Error("Authentication failed", attrs...)
			} else {
				logger.Warn("Authentication rejected", attrs...)
			}
			AbortWithAppError(c, failure.appErr)
			return
		}
		attachIdentity(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller when a valid token is presented and never rejects.
func OptionalAuthMiddleware(tokens portssvc.TokenSvcFacade, users portssvc.UserReaderSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := bearerToken(c); !ok {
			c.Next()
			return
		}
		user, failure := authenticate(c, tokens, users)
		if failure != nil {
			GetLoggerFromCtx(c.Request.Context()).Debug("Optional authentication skipped", slog.String("reason", failure.reason))
			c.Next()
			return
		}
		attachIdentity(c, user)
		c.Next()
	}
}

// RequireRoles admits only callers whose role is in allowed. It must run after AuthMiddleware.
func RequireRoles(allowed domain.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentityFromContext(c)
		if !ok {
			AbortWithAppError(c, apperrors.NewUnauthorizedError(msgNotAuthenticated))
			return
		}
		if !allowed.Contains(id.Role) {
			GetLoggerFromCtx(c.Request.Context()).Warn("Role not permitted",
				slog.String("role", id.Role.String()),
				slog.String("allowed", allowed.String()))
			AbortWithAppError(c, apperrors.NewForbiddenError(msgForbidden))
			return
		}
		c.Next()
	}
}
