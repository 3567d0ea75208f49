package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	"github.com/echopind/echopind_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status" example:"OK"`
	Timestamp time.Time `json:"timestamp"`
}

type healthHandler struct {
	store portsrepo.HealthChecker
}

// health godoc
// @Summary Service health
// @Description Reports whether the credential store is reachable.
// @Tags root
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *healthHandler) health(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			middleware.GetLoggerFromContext(c).Error("Store ping failed", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "UNAVAILABLE", Timestamp: time.Now().UTC()})
			return
		}
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "OK", Timestamp: time.Now().UTC()})
}
