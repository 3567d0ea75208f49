package pgsql

import (
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres repositories onto a shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo: userRepo,
		Health:   &userRepo.BaseRepository,
		Close:    dbPool.Close,
	}
}
