package middleware

import (
	"context"

	"github.com/echopind/echopind_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// identityKey is the key used to store the authenticated caller in the request context.
const identityKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying the authenticated caller.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated caller from a standard context.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// GetIdentityFromContext retrieves the authenticated caller of a Gin request.
func GetIdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	return IdentityFromContext(c.Request.Context())
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	id, ok := GetIdentityFromContext(c)
	if !ok || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}
