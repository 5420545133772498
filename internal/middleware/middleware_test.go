package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/pkg/jwt"
	pkgredis "github.com/nadi-health/core/internal/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *pkgredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := pkgredis.Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, rc := newRedis(t)

	r := gin.New()
	r.POST("/gen", RateLimit(rc, "ai", 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/gen", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/gen", "").Code)

	w := serve(r, http.MethodPost, "/gen", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/gen", RateLimit(nil, "ai", 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/gen", "").Code)
	}
}

func TestIdempotenceRejectsRepeat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, rc := newRedis(t)

	calls := 0
	r := gin.New()
	r.POST("/gen", Idempotence(rc.Raw()), func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/gen", `{"title":"a"}`).Code)
	assert.Equal(t, http.StatusConflict, serve(r, http.MethodPost, "/gen", `{"title":"a"}`).Code)
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/gen", `{"title":"b"}`).Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotenceReleasesFailedRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, rc := newRedis(t)

	fail := true
	r := gin.New()
	r.POST("/gen", Idempotence(rc.Raw()), func(c *gin.Context) {
		if fail {
			c.Status(http.StatusBadGateway)
			return
		}
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusBadGateway, serve(r, http.MethodPost, "/gen", `{}`).Code)
	fail = false
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/gen", `{}`).Code)
}

func TestPublicCacheAndPurge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, rc := newRedis(t)
	rdb := rc.Raw()

	hits := 0
	r := gin.New()
	r.GET("/public/a", PublicCache(rdb, time.Minute), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "body")
	})
	r.PUT("/articles/a", PurgeOnWrite(rdb), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/public/a", "")
	assert.Equal(t, "body", w.Body.String())
	w = serve(r, http.MethodGet, "/public/a", "")
	assert.Equal(t, "body", w.Body.String())
	assert.Equal(t, "hit", w.Header().Get("x-nadi-cache"))
	assert.Equal(t, 1, hits)
	assert.Len(t, mr.Keys(), 1)

	serve(r, http.MethodPut, "/articles/a", "")
	assert.Empty(t, mr.Keys())

	serve(r, http.MethodGet, "/public/a", "")
	assert.Equal(t, 2, hits)
}

func TestPublicCacheSkipsSignedInRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, rc := newRedis(t)

	token, err := jwt.Sign("u1", "Editor", RoleAdmin, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/public/a", OptionalAuth(), PublicCache(rc.Raw(), time.Minute), func(c *gin.Context) {
		c.String(http.StatusOK, "body")
	})

	req := httptest.NewRequest(http.MethodGet, "/public/a", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, mr.Keys())
}

func TestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, http.MethodGet, "/health", "")
	serve(r, http.MethodGet, "/ok", "")
	serve(r, http.MethodGet, "/boom", "")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}
