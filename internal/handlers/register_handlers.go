package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/echopind/echopind_backend/cmd/docs"
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/dto"
	"github.com/echopind/echopind_backend/internal/middleware"
	"github.com/echopind/echopind_backend/internal/platform/config"
	"github.com/echopind/echopind_backend/internal/platform/metrics"
	"github.com/echopind/echopind_backend/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// Dependencies is everything the HTTP layer needs, built once in main.
type Dependencies struct {
	Config   *config.Config
	Services *portssvc.ServiceContainer
	Health   portsrepo.HealthChecker
	Metrics  *metrics.Metrics
	// Analytics may be a disabled client; it is never nil-checked by handlers.
	Analytics *utils.PosthogClientWrapper
	// AuthLimiter throttles the credential-accepting routes. Nil disables throttling.
	AuthLimiter *limiter.Limiter
	Logger      *slog.Logger
}

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators installs the custom binding tags on gin's shared validator engine.
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		validatorsErr = dto.RegisterValidators(v)
	})
	return validatorsErr
}

// NewRouter builds the gin engine with global middleware and every route.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Config == nil || deps.Services == nil {
		return nil, errors.New("router requires config and services")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	r.Use(
		middleware.StructuredLoggingMiddleware(deps.Logger),
		middleware.Recovery(),
		middleware.Metrics(deps.Metrics),
		cors.New(corsConfig(deps.Config)),
		middleware.RequestTimeout(deps.Config.RequestTimeout),
		middleware.PosthogMiddleware(deps.Analytics),
	)

	RegisterRoutes(r, deps)
	return r, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowCredentials = true
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	c.ExposeHeaders = []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}
	c.MaxAge = 12 * time.Hour
	return c
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	health := &healthHandler{store: deps.Health}
	r.GET("/health", health.health)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	requireAuth := middleware.AuthMiddleware(deps.Services.TokenService, deps.Services.User)
	optionalAuth := middleware.OptionalAuthMiddleware(deps.Services.TokenService, deps.Services.User)
	rateLimit := func(c *gin.Context) { c.Next() }
	if deps.AuthLimiter != nil {
		rateLimit = middleware.RateLimit(deps.AuthLimiter)
	}

	api := r.Group("/api")
	registerAuthRoutes(api, deps, requireAuth, rateLimit)
	registerUserRoutes(api, deps, requireAuth)
	api.GET("/leaderboard/preview", optionalAuth, leaderboardPreviewHandler)

	setupSwaggerRoutes(r, deps.Config)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
