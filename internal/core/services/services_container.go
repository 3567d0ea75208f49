package services

import (
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/platform/config"
	"github.com/echopind/echopind_backend/internal/utils"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.TokenService = NewTokenService(cfg)
	container.User = NewUserService(repos.UserRepo)
	container.Auth = NewAuthService(
		repos.UserRepo,
		utils.NewPasswordHasher(cfg.BcryptCost),
		container.TokenService,
		WithMaxRefreshTokens(cfg.MaxRefreshTokens),
	)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AuthSvcFacade               = (*authService)(nil)
	_ portssvc.UserSvcFacade               = (*userService)(nil)
	_ portssvc.TokenSvcFacade              = (*tokenService)(nil)
	_ portssvc.GoogleOAuthHandlerSvcFacade = (*googleOAuthHandlerService)(nil)
	_ portssvc.PasswordHasher              = (*utils.PasswordHasher)(nil)
)
