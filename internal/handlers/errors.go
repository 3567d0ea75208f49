package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const msgValidationFailed = "Please correct the following errors"

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string       `json:"error" example:"Unauthenticated"`
	Message string       `json:"message" example:"Invalid email or password"`
	Details []FieldError `json:"details,omitempty"`
}

// respondError maps a service error to its HTTP representation.
// Server-side failures are logged with their cause; clients only ever see the generic message.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	logger := middleware.GetLoggerFromContext(c)
	if appErr.Code >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.Int("status", appErr.Code), slog.String("error", err.Error()))
	} else {
		logger.Debug("Request rejected", slog.Int("status", appErr.Code), slog.String("error", err.Error()))
	}
	c.JSON(appErr.Code, appErr)
}

// respondBindError reports a request that could not be decoded or failed its binding tags.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		c.JSON(http.StatusBadRequest, apperrors.NewValidationError(msgValidationFailed, details))
		return
	}
	middleware.GetLoggerFromContext(c).Debug("Malformed request body", slog.String("error", err.Error()))
	appErr := apperrors.NewBadRequestError("Invalid request body")
	c.JSON(appErr.Code, appErr)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "role":
		return "Role must be one of student, teacher, admin"
	case "isodate":
		return fmt.Sprintf("%s must be a valid ISO-8601 date", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
