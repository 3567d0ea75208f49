// Package database selects and wires the credential store configured by STORE_DRIVER.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/echopind/echopind_backend/internal/adapters/database/memory"
	"github.com/echopind/echopind_backend/internal/adapters/database/mongodb"
	"github.com/echopind/echopind_backend/internal/adapters/database/pgsql"
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	"github.com/echopind/echopind_backend/internal/platform/config"
	"github.com/echopind/echopind_backend/migrations"
	pkgdb "github.com/echopind/echopind_backend/pkg/database"
)

// NewRepositoryProvider connects to the configured store. The caller must invoke Close on the result.
func NewRepositoryProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if cfg.RunMigrations {
			logger.Info("Running database migrations...")
			if err := pkgdb.RunMigrations(cfg.DatabaseURL, migrations.FS, logger); err != nil {
				return portsrepo.RepositoryProvider{}, err
			}
		}
		pool, err := pkgdb.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), nil

	case config.StoreDriverMongo:
		client, err := pkgdb.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		provider, err := mongodb.NewRepositoryProvider(ctx, client, cfg.MongoDatabase)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return portsrepo.RepositoryProvider{}, err
		}
		return provider, nil

	case config.StoreDriverMemory:
		logger.Warn("Using in-memory credential store, data is lost on restart")
		return memory.NewRepositoryProvider(), nil

	default:
		return portsrepo.RepositoryProvider{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
