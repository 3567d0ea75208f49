package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/echopind/echopind_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func limitedRouter(lim *limiter.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r.POST("/login", middleware.RateLimit(lim), ok)
	r.POST("/register", middleware.RateLimit(lim), ok)
	return r
}

func post(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestRateLimitInMemory(t *testing.T) {
	lim, err := middleware.NewRateLimiter("2-M", nil)
	require.NoError(t, err)
	r := limitedRouter(lim)

	w := post(r, "/login")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusNoContent, post(r, "/login").Code)
	w = post(r, "/login")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"TooManyRequests"`)

	// Buckets are per route.
	assert.Equal(t, http.StatusNoContent, post(r, "/register").Code)
}

func TestRateLimitSharedThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	newClient := func() *redis.Client {
		c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = c.Close() })
		return c
	}

	limA, err := middleware.NewRateLimiter("3-H", newClient())
	require.NoError(t, err)
	limB, err := middleware.NewRateLimiter("3-H", newClient())
	require.NoError(t, err)
	instanceA, instanceB := limitedRouter(limA), limitedRouter(limB)

	require.Equal(t, http.StatusNoContent, post(instanceA, "/login").Code)
	require.Equal(t, http.StatusNoContent, post(instanceB, "/login").Code)
	require.Equal(t, http.StatusNoContent, post(instanceA, "/login").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(instanceB, "/login").Code)
}

func TestRateLimitRejectsBadRate(t *testing.T) {
	_, err := middleware.NewRateLimiter("lots", nil)
	assert.Error(t, err)
}
