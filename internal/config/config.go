package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at configPath, applies defaults and then the
// NADI_* environment overrides.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes config content. Unknown keys are rejected. getenv supplies
// the environment overrides.
func Parse(content []byte, getenv func(string) string) (*AppConfig, error) {
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
	}

	cfg := defaultAppConfig()
	applyRawAppConfig(&cfg, raw)
	applyEnvOverrides(&cfg, getenv)
	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		Timezone: defaultTimezone,
		Database: DatabaseConfig{
			Driver:    defaultDBDriver,
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
			Path:      defaultSQLitePath,
		},
		Redis: RedisConfig{Port: defaultRedisPort},
		Storage: StorageConfig{
			Backend:     StorageLocal,
			ArticlesDir: defaultArticlesDir,
			S3: S3Config{
				Region: defaultS3Region,
				Prefix: defaultS3Prefix,
			},
		},
		AI: AIConfig{
			Provider:           defaultAIProvider,
			Endpoint:           defaultAIEndpoint,
			Model:              defaultAIModel,
			MaxTokens:          defaultAIMaxTokens,
			TimeoutSeconds:     defaultAITimeout,
			RateLimitPerMinute: defaultAIRateLimit,
		},
		Admin: AdminConfig{Name: defaultAdminName},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	setString(&cfg.Env, raw.Env)
	setString(&cfg.JWTSecret, raw.JWTSecret)
	setString(&cfg.Timezone, raw.Timezone)
	if len(raw.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = raw.AllowedOrigins
	}
	setString(&cfg.Paths.Logs, raw.Paths.Logs)
	setString(&cfg.Paths.Backups, raw.Paths.Backups)

	db := &cfg.Database
	setString(&db.Driver, raw.Database.Driver)
	setString(&db.DSN, raw.Database.DSN)
	setString(&db.Host, raw.Database.Host)
	setString(&db.User, raw.Database.User)
	setString(&db.Password, raw.Database.Password)
	setString(&db.Name, raw.Database.Name)
	setString(&db.Charset, raw.Database.Charset)
	setString(&db.Loc, raw.Database.Loc)
	setString(&db.Path, raw.Database.Path)
	if raw.Database.Port != 0 {
		db.Port = raw.Database.Port
	}
	if raw.Database.ParseTime != nil {
		db.ParseTime = *raw.Database.ParseTime
	}
	if raw.Database.Params != nil {
		db.Params = raw.Database.Params
	}

	rd := &cfg.Redis
	setString(&rd.URL, raw.Redis.URL)
	setString(&rd.Host, raw.Redis.Host)
	setString(&rd.Username, raw.Redis.Username)
	setString(&rd.Password, raw.Redis.Password)
	if raw.Redis.Port != 0 {
		rd.Port = raw.Redis.Port
	}
	if raw.Redis.DB != nil {
		rd.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		rd.TLS = *raw.Redis.TLS
	}
	if raw.Redis.Enable != nil {
		rd.Enable = *raw.Redis.Enable
	} else {
		rd.Enable = strings.TrimSpace(raw.Redis.URL) != "" || strings.TrimSpace(raw.Redis.Host) != ""
	}

	st := &cfg.Storage
	if raw.Storage.Backend != "" {
		st.Backend = StorageBackend(raw.Storage.Backend)
	}
	setString(&st.ArticlesDir, raw.Storage.ArticlesDir)
	setString(&st.SeedDir, raw.Storage.SeedDir)
	setString(&st.ManifestPath, raw.Storage.ManifestPath)
	if raw.Storage.Manifest != nil {
		st.Manifest = *raw.Storage.Manifest
	}
	s3 := raw.Storage.S3
	setString(&st.S3.Endpoint, s3.Endpoint)
	setString(&st.S3.Region, s3.Region)
	setString(&st.S3.Bucket, s3.Bucket)
	setString(&st.S3.Prefix, s3.Prefix)
	setString(&st.S3.AccessKeyID, s3.AccessKeyID)
	setString(&st.S3.SecretAccessKey, s3.SecretAccessKey)
	if s3.PathStyle != nil {
		st.S3.PathStyle = *s3.PathStyle
	}

	ai := &cfg.AI
	if raw.AI.Provider != "" {
		ai.Provider = AIProvider(raw.AI.Provider)
		if ai.Provider != AIProviderDeepSeek && raw.AI.Endpoint == "" {
			ai.Endpoint = ""
		}
	}
	setString(&ai.APIKey, raw.AI.APIKey)
	setString(&ai.Endpoint, raw.AI.Endpoint)
	setString(&ai.Model, raw.AI.Model)
	if raw.AI.MaxTokens != 0 {
		ai.MaxTokens = raw.AI.MaxTokens
	}
	if raw.AI.TimeoutSeconds != 0 {
		ai.TimeoutSeconds = raw.AI.TimeoutSeconds
	}
	if raw.AI.RateLimitPerMinute != nil {
		ai.RateLimitPerMinute = *raw.AI.RateLimitPerMinute
	}

	setString(&cfg.Admin.Email, raw.Admin.Email)
	setString(&cfg.Admin.Password, raw.Admin.Password)
	setString(&cfg.Admin.Name, raw.Admin.Name)
}

// applyEnvOverrides lets secrets stay out of the config file.
func applyEnvOverrides(cfg *AppConfig, getenv func(string) string) {
	if getenv == nil {
		return
	}
	env := func(name string) string { return strings.TrimSpace(getenv(envPrefix + name)) }

	setString(&cfg.JWTSecret, env("JWT_SECRET"))
	setString(&cfg.Database.DSN, env("DATABASE_DSN"))
	setString(&cfg.AI.APIKey, env("AI_API_KEY"))
	setString(&cfg.Storage.S3.AccessKeyID, env("S3_ACCESS_KEY_ID"))
	setString(&cfg.Storage.S3.SecretAccessKey, env("S3_SECRET_ACCESS_KEY"))
	setString(&cfg.Admin.Password, env("ADMIN_PASSWORD"))
	if v := env("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = StorageBackend(v)
	}
	if v := env("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enable = true
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case "mysql":
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("unknown database.driver %q, expected mysql or sqlite", c.Database.Driver)
	}
	if c.Redis.Enable && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}

	switch c.Storage.Backend {
	case StorageRelational:
	case StorageLocal:
		if c.Storage.ArticlesDir == "" {
			return fmt.Errorf("storage.articles_dir is required for the local backend")
		}
	case StorageBlob:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the blob backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q, expected relational, blob or local", c.Storage.Backend)
	}

	switch c.AI.Provider {
	case AIProviderOpenAI, AIProviderOpenAICompatible, AIProviderAnthropic, AIProviderDeepSeek:
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	if c.AI.Provider == AIProviderOpenAICompatible && c.AI.Endpoint == "" {
		return fmt.Errorf("ai.endpoint is required for openai-compatible providers")
	}
	if c.AI.MaxTokens < 1 {
		return fmt.Errorf("invalid ai.max_tokens %d", c.AI.MaxTokens)
	}
	if c.AI.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid ai.timeout_seconds %d", c.AI.TimeoutSeconds)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func (c *AppConfig) BackupDir() string {
	if c == nil {
		return ResolveRuntimePath("", "backups")
	}
	return ResolveRuntimePath(c.Paths.Backups, "backups")
}

// AITimeout is the deadline of one generation call.
func (c *AppConfig) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
