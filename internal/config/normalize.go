package config

import "strings"

func (c *AppConfig) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.AllowedOrigins = normalizeOrigins(c.AllowedOrigins)
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	c.Database.Params = copyStringMap(c.Database.Params)
	c.Redis.URL = normalizeRedisRawURL(c.Redis.URL)
	c.Storage.Backend = StorageBackend(strings.ToLower(string(c.Storage.Backend)))
	c.Storage.S3.Endpoint = strings.TrimRight(c.Storage.S3.Endpoint, "/")
	if c.Storage.S3.Prefix != "" && !strings.HasSuffix(c.Storage.S3.Prefix, "/") {
		c.Storage.S3.Prefix += "/"
	}
	c.AI.Provider = AIProvider(strings.ToLower(string(c.AI.Provider)))
	c.AI.Endpoint = strings.TrimRight(c.AI.Endpoint, "/")
	c.Admin.Email = strings.ToLower(c.Admin.Email)
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
