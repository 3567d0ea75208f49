package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/dto"
	"github.com/echopind/echopind_backend/internal/middleware"
	"github.com/echopind/echopind_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests related to users.
type userHandler struct {
	userService portssvc.UserSvcFacade
	authService portssvc.AuthSvcFacade
	analytics   *utils.PosthogClientWrapper
}

// newUserHandler creates a new userHandler.
func newUserHandler(services *portssvc.ServiceContainer, analytics *utils.PosthogClientWrapper) *userHandler {
	return &userHandler{
		userService: services.User,
		authService: services.Auth,
		analytics:   analytics,
	}
}

// registerUserRoutes registers all user-related routes. Every route requires authentication.
func registerUserRoutes(rg *gin.RouterGroup, deps Dependencies, requireAuth gin.HandlerFunc) {
	h := newUserHandler(deps.Services, deps.Analytics)
	adminOnly := middleware.RequireRoles(domain.NewRoleSet(domain.RoleAdmin))

	users := rg.Group("/user", requireAuth)
	{
		users.GET("/profile", h.getProfile)
		users.PUT("/profile", h.updateProfile)
		users.GET("/all", adminOnly, h.listUsers)
		users.PUT("/:id/status", adminOnly, h.updateStatus)
		users.DELETE("/account", h.deleteAccount)
	}
}

// getProfile godoc
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserEnvelope
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /user/profile [get]
func (h *userHandler) getProfile(c *gin.Context) {
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

// updateProfile godoc
// @Summary Update own profile
// @Description Updates the supplied profile fields. Omitted fields are left unchanged.
// @Tags users
// @Accept json
// @Produce json
// @Param profile body dto.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} dto.UserMessageResponse
// @Failure 400 {object} ErrorResponse "Validation failed or email already in use"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /user/profile [put]
func (h *userHandler) updateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.AbortWithAppError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			middleware.AbortWithAppError(c, apperrors.NewDuplicateError("Email is already in use"))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserMessageResponse{Message: "Profile updated successfully", User: dto.ToUserResponse(user)})
}

// listUsers godoc
// @Summary List users
// @Description Admin only. Newest first, optionally filtered by role and a case-insensitive search on name, email and school.
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param role query string false "Role filter" Enums(student, teacher, admin)
// @Param search query string false "Search text"
// @Success 200 {object} dto.ListUsersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /user/all [get]
func (h *userHandler) listUsers(c *gin.Context) {
	var query dto.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListUsersResponse(users, query, total))
}

// updateStatus godoc
// @Summary Activate or deactivate a user
// @Description Admin only. Deactivation ends every session of the user.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param status body dto.UpdateUserStatusRequest true "New status"
// @Success 200 {object} dto.UserMessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /user/{id}/status [put]
func (h *userHandler) updateStatus(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)
	targetID := c.Param("id")

	var req dto.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.SetUserStatus(c.Request.Context(), targetID, *req.IsActive, adminID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			middleware.AbortWithAppError(c, apperrors.NewNotFoundError(msgUserNotFound))
			return
		}
		respondError(c, err)
		return
	}

	msg := "User deactivated successfully"
	if user.IsActive {
		msg = "User activated successfully"
	}
	middleware.GetLoggerFromContext(c).Info("User status changed", slog.String("target_user_id", targetID), slog.Bool("is_active", user.IsActive))
	c.JSON(http.StatusOK, dto.UserMessageResponse{Message: msg, User: dto.ToUserResponse(user)})
}

// deleteAccount godoc
// @Summary Delete own account
// @Description Permanently removes the caller and all of its sessions after re-checking the password.
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.DeleteAccountRequest true "Current password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse "Password missing"
// @Failure 401 {object} ErrorResponse "Wrong password"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /user/account [delete]
func (h *userHandler) deleteAccount(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.AbortWithAppError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	var req dto.DeleteAccountRequest
	_ = c.ShouldBindJSON(&req)
	if req.Password == "" {
		middleware.AbortWithAppError(c, apperrors.NewBadRequestError("Password is required to delete account"))
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), userID, req.Password); err != nil {
		respondError(c, err)
		return
	}

	middleware.PosthogEvent(c, h.analytics, userID, "account_deleted", nil)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account deleted successfully"})
}
