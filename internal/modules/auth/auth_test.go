package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/nadi-health/core/internal/config"
	"github.com/nadi-health/core/internal/middleware"
	"github.com/nadi-health/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}))
	return NewService(db, nil)
}

var adminCfg = config.AdminConfig{Email: "Admin@Nadi.org", Password: "s3cret-pass", Name: "Editor"}

func TestEnsureAdminOnlyOnEmptyTable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.EnsureAdmin(ctx, adminCfg))
	require.NoError(t, svc.EnsureAdmin(ctx, config.AdminConfig{Email: "other@nadi.org", Password: "x"}))

	var users []models.UserModel
	require.NoError(t, svc.db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@nadi.org", users[0].Email)
	assert.Equal(t, middleware.RoleAdmin, users[0].Role)
	assert.NotEqual(t, adminCfg.Password, users[0].Password)
}

func TestEnsureAdminSkipsWithoutCredentials(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.EnsureAdmin(context.Background(), config.AdminConfig{Email: "a@b.c"}))

	var count int64
	require.NoError(t, svc.db.Model(&models.UserModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginAndMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	require.NoError(t, svc.EnsureAdmin(context.Background(), adminCfg))

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"admin@nadi.org","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":" ADMIN@nadi.org ","password":"s3cret-pass"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
		User  struct {
			Name     string `json:"name"`
			Password string `json:"password"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	assert.Equal(t, "Editor", body.User.Name)
	assert.Empty(t, body.User.Password)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"admin@nadi.org"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
