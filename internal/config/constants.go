package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	envPrefix         = "NADI_"

	defaultPort        = 8080
	defaultEnv         = "development"
	defaultTimezone    = "UTC"
	defaultDBDriver    = "mysql"
	defaultDBHost      = "127.0.0.1"
	defaultDBPort      = 3306
	defaultDBUser      = "root"
	defaultDBPassword  = "password"
	defaultDBName      = "nadi"
	defaultDBCharset   = "utf8mb4"
	defaultDBLoc       = "Local"
	defaultSQLitePath  = "data/nadi.db"
	defaultRedisPort   = 6379
	defaultArticlesDir = "data/articles"
	defaultS3Region    = "us-east-1"
	defaultS3Prefix    = "articles/"
	defaultAIProvider  = AIProviderDeepSeek
	defaultAIEndpoint  = "https://api.deepseek.com"
	defaultAIModel     = "deepseek-chat"
	defaultAIMaxTokens = 4096
	defaultAITimeout   = 120
	defaultAIRateLimit = 20
	defaultAdminName   = "NADI"
)
