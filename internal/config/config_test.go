package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil, noEnv)
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, defaultArticlesDir, cfg.Storage.ArticlesDir)
	assert.Equal(t, AIProviderDeepSeek, cfg.AI.Provider)
	assert.Equal(t, "https://api.deepseek.com", cfg.AI.Endpoint)
	assert.Equal(t, 4096, cfg.AI.MaxTokens)
	assert.False(t, cfg.Redis.Enable)
	assert.Equal(t, "root:password@tcp(127.0.0.1:3306)/nadi?charset=utf8mb4&loc=Local&parseTime=true", cfg.Database.DSNValue())
}

func TestParseFullFile(t *testing.T) {
	content := []byte(`
port: 9000
env: production
timezone: Asia/Kolkata
database:
  driver: sqlite
  path: /var/lib/nadi/nadi.db
redis:
  url: localhost:6380/2
storage:
  backend: blob
  seed_dir: ./seed
  manifest: true
  s3:
    endpoint: http://minio:9000/
    bucket: nadi-articles
    prefix: content
    path_style: true
ai:
  provider: openai-compatible
  endpoint: https://llm.internal/v1/
  model: qwen
admin:
  email: Admin@Example.org
  password: secret
`)
	cfg, err := Parse(content, noEnv)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enable)
	assert.Equal(t, "redis://localhost:6380/2", cfg.Redis.URLValue())
	assert.Equal(t, StorageBlob, cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Manifest)
	assert.Equal(t, "http://minio:9000", cfg.Storage.S3.Endpoint)
	assert.Equal(t, "content/", cfg.Storage.S3.Prefix)
	assert.True(t, cfg.Storage.S3.PathStyle)
	assert.Equal(t, AIProviderOpenAICompatible, cfg.AI.Provider)
	assert.Equal(t, "https://llm.internal/v1", cfg.AI.Endpoint)
	assert.Equal(t, "admin@example.org", cfg.Admin.Email)
}

func TestParseRejectsUnknownKeysAndBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "prot: 80\n",
		"bad port":          "port: 70000\n",
		"bad backend":       "storage:\n  backend: ftp\n",
		"blob needs bucket": "storage:\n  backend: blob\n",
		"bad provider":      "ai:\n  provider: cohere\n",
		"compat endpoint":   "ai:\n  provider: openai-compatible\n",
		"bad timezone":      "timezone: Mars/Olympus\n",
		"bad driver":        "database:\n  driver: oracle\n",
	}
	for name, content := range cases {
		_, err := Parse([]byte(content), noEnv)
		assert.Error(t, err, name)
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"NADI_AI_API_KEY":           "sk-env",
		"NADI_JWT_SECRET":           "jwt-env",
		"NADI_STORAGE_BACKEND":      "relational",
		"NADI_DATABASE_DSN":         "u:p@tcp(db:3306)/x",
		"NADI_S3_ACCESS_KEY_ID":     "AK",
		"NADI_ADMIN_PASSWORD":       "pw",
		"NADI_REDIS_URL":            "redis://cache:6379/0",
		"NADI_S3_SECRET_ACCESS_KEY": "SK",
	}
	cfg, err := Parse([]byte("ai:\n  api_key: sk-file\n"), func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.AI.APIKey)
	assert.Equal(t, "jwt-env", cfg.JWTSecret)
	assert.Equal(t, StorageRelational, cfg.Storage.Backend)
	assert.Equal(t, "u:p@tcp(db:3306)/x", cfg.Database.DSNValue())
	assert.Equal(t, "AK", cfg.Storage.S3.AccessKeyID)
	assert.Equal(t, "SK", cfg.Storage.S3.SecretAccessKey)
	assert.Equal(t, "pw", cfg.Admin.Password)
	assert.True(t, cfg.Redis.Enable)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 8181\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestResolveRuntimePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("NADI_HOME", home)

	assert.Equal(t, filepath.Join(home, "logs"), ResolveRuntimePath("", "logs"))
	assert.Equal(t, filepath.Join(home, "var/backups"), ResolveRuntimePath(" var/backups ", "backups"))
	assert.Equal(t, "/srv/nadi/logs", ResolveRuntimePath("/srv/nadi/logs/", "logs"))
}
