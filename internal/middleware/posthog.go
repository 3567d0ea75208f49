package middleware

import (
	"net/http"
	"strings"

	"github.com/echopind/echopind_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains routes that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health":       true,
	"/metrics":      true,
	"/swagger/*any": true,
}

// PosthogMiddleware creates a Gin middleware handler that tracks successful authenticated API calls.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || pathsToSkip[c.FullPath()] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// "/api/user/profile" -> "api_user_profile"
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status_code": c.Writer.Status(),
		}
		posthogClient.Enqueue(userID, eventName, props)
	}
}

// PosthogEvent sends a custom event for distinctID. Handlers call it for events whose subject
// is not yet in the request context, such as registration and login.
func PosthogEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, distinctID, eventName string, properties map[string]any) {
	if !posthogClient.IsInitialized() || distinctID == "" {
		return
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	properties["method"] = c.Request.Method
	properties["path"] = c.FullPath()
	posthogClient.Enqueue(distinctID, eventName, properties)
}
