package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func serve(e *echo.Echo, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRedisCacheKeyedByVersion(t *testing.T) {
	rdb := newRedis(t)
	var version atomic.Uint64
	var calls atomic.Int32

	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20}
	e := echo.New()
	e.GET("/v1/rooms/available", func(c echo.Context) error {
		n := calls.Add(1)
		return c.JSON(http.StatusOK, echo.Map{"call": n})
	}, NewRedisCache(cfg, rdb, version.Load))

	first := serve(e, http.MethodGet, "/v1/rooms/available?check_in=2025-06-01&check_out=2025-06-03", nil)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := serve(e, http.MethodGet, "/v1/rooms/available?check_in=2025-06-01&check_out=2025-06-03", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), calls.Load())

	other := serve(e, http.MethodGet, "/v1/rooms/available?check_in=2025-06-02&check_out=2025-06-03", nil)
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))

	version.Add(1)
	fresh := serve(e, http.MethodGet, "/v1/rooms/available?check_in=2025-06-01&check_out=2025-06-03", nil)
	assert.Equal(t, "MISS", fresh.Header().Get("X-Cache"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache"}
	var calls atomic.Int32

	e := echo.New()
	e.GET("/x", func(c echo.Context) error {
		calls.Add(1)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad"})
	}, NewRedisCache(cfg, rdb, func() uint64 { return 1 }))

	serve(e, http.MethodGet, "/x", nil)
	rec := serve(e, http.MethodGet, "/x", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenBucket(t *testing.T) {
	rdb := newRedis(t)
	log, _ := logtest.NewNullLogger()
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, log))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ping", nil).Code)
	rec := serve(e, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	blocked := serve(e, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
}

func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, nil))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/ping", nil).Code)
	}
}

func TestJWTAuthAndRoles(t *testing.T) {
	const secret = "test-secret"
	guest, err := utils.NewAccessToken(secret, "alice", "GUEST", time.Hour)
	require.NoError(t, err)
	manager, err := utils.NewAccessToken(secret, "root", "MANAGER", time.Hour)
	require.NoError(t, err)

	e := echo.New()
	g := e.Group("/v1", JWTAuth(secret))
	g.GET("/me", func(c echo.Context) error { return c.String(http.StatusOK, UserID(c)) })
	g.POST("/rooms", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, RequireRole("MANAGER"))

	rec := serve(e, http.MethodGet, "/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/v1/me", map[string]string{"Authorization": "Bearer junk"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/v1/me", map[string]string{"Authorization": "Bearer " + guest.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	rec = serve(e, http.MethodPost, "/v1/rooms", map[string]string{"Authorization": "Bearer " + guest.Token})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(e, http.MethodPost, "/v1/rooms", map[string]string{"Authorization": "Bearer " + manager.Token})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/missing", func(c echo.Context) error { return echo.ErrNotFound })

	serve(e, http.MethodGet, "/ok", nil)
	rec := serve(e, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "request served", entries[0].Message)
	assert.Equal(t, 200, entries[0].Data["status"])
	assert.Equal(t, "request rejected", entries[1].Message)
	assert.Equal(t, "/missing", entries[1].Data["path"])
}
