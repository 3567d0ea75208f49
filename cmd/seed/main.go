// Command seed creates the demo accounts used by the frontend and manual testing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/echopind/echopind_backend/internal/adapters/database"
	"github.com/echopind/echopind_backend/internal/apperrors"
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/core/services"
	"github.com/echopind/echopind_backend/internal/dto"
	"github.com/echopind/echopind_backend/internal/platform/config"
)

var demoUsers = []dto.RegisterRequest{
	{FullName: "Test Student", Email: "test@echopind.com", Password: "test123", Role: "student", School: "EchoPind Academy", Grade: "Grade 10", Phone: "123-456-7890"},
	{FullName: "Demo Student", Email: "demo@echopind.com", Password: "eco123", Role: "student", School: "Green Valley School", Grade: "Grade 12", Phone: "123-456-7891"},
	{FullName: "Prof. Green", Email: "teacher@echopind.com", Password: "teach123", Role: "teacher", School: "EchoPind Academy", Phone: "123-456-7892"},
	{FullName: "Admin User", Email: "admin@echopind.com", Password: "admin123", Role: "admin", Phone: "123-456-7893"},
}

func main() {
	reset := flag.Bool("reset", false, "delete the demo accounts before creating them")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Error("Seeding the in-memory store has no effect, set STORE_DRIVER to postgres or mongo")
		os.Exit(1)
	}

	ctx := context.Background()
	repos, err := database.NewRepositoryProvider(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer repos.Close()

	if err := seed(ctx, repos, services.NewServiceContainer(cfg, repos), *reset, logger); err != nil {
		logger.Error("Seeding failed", slog.String("error", err.Error()))
		repos.Close()
		os.Exit(1)
	}
}

func seed(ctx context.Context, repos portsrepo.RepositoryProvider, svc *portssvc.ServiceContainer, reset bool, logger *slog.Logger) error {
	for _, req := range demoUsers {
		if reset {
			existing, err := repos.UserRepo.FindUserByEmail(ctx, req.Email)
			switch {
			case err == nil:
				if err := repos.UserRepo.DeleteUser(ctx, existing.UserID); err != nil {
					return fmt.Errorf("delete %s: %w", req.Email, err)
				}
				logger.Info("Deleted demo user", slog.String("email", req.Email))
			case !errors.Is(err, apperrors.ErrNotFound):
				return fmt.Errorf("look up %s: %w", req.Email, err)
			}
		}

		result, err := svc.Auth.Register(ctx, req)
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Info("Demo user already exists", slog.String("email", req.Email))
			continue
		}
		if err != nil {
			return fmt.Errorf("register %s: %w", req.Email, err)
		}
		// Registration opens a session; seeded accounts start without one.
		if err := svc.Auth.LogoutAll(ctx, result.User.UserID); err != nil {
			return fmt.Errorf("clear sessions of %s: %w", req.Email, err)
		}
		logger.Info("Created demo user", slog.String("email", req.Email), slog.String("role", req.Role))
	}
	return nil
}
