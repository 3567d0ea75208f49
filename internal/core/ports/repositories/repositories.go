package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UserRepo UserRepositoryFacade
	Health   HealthChecker
	// Close releases the underlying connections. Never nil.
	Close func()
}
