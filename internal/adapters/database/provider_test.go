package database_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/echopind/echopind_backend/internal/adapters/database"
	"github.com/echopind/echopind_backend/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepositoryProvider_Memory(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.StoreDriverMemory}

	provider, err := database.NewRepositoryProvider(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	defer provider.Close()

	assert.NotNil(t, provider.UserRepo)
	assert.NoError(t, provider.Health.Ping(context.Background()))
}

func TestNewRepositoryProvider_UnknownDriver(t *testing.T) {
	cfg := &config.Config{StoreDriver: "sqlite"}

	_, err := database.NewRepositoryProvider(context.Background(), cfg, slog.Default())
	assert.ErrorContains(t, err, "unknown store driver")
}
