package middleware

import (
	"fmt"
	"log/slog"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// Recovery turns panics into a 500 in the standard error shape.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		GetLoggerFromCtx(c.Request.Context()).Error("Panic recovered", slog.String("panic", fmt.Sprint(recovered)))
		AbortWithAppError(c, apperrors.NewInternalServerError(fmt.Errorf("panic: %v", recovered)))
	})
}
