package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string // "development" | "production"
	JWTSecret      string
	Timezone       string
	AllowedOrigins []string
	Paths          RuntimePathsConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Storage        StorageConfig
	AI             AIConfig
	Admin          AdminConfig
}

type RuntimePathsConfig struct {
	Logs    string
	Backups string
}

type DatabaseConfig struct {
	Driver    string // "mysql" | "sqlite"
	DSN       string
	Host      string
	Port      int
	User      string
	Password  string
	Name      string
	Charset   string
	ParseTime bool
	Loc       string
	Path      string // sqlite file
	Params    map[string]string
}

// RedisConfig is optional; batch task records are kept only in memory
// without it.
type RedisConfig struct {
	Enable   bool
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	DB       int
	TLS      bool
}

type StorageBackend string

const (
	StorageRelational StorageBackend = "relational"
	StorageBlob       StorageBackend = "blob"
	StorageLocal      StorageBackend = "local"
)

type StorageConfig struct {
	Backend      StorageBackend
	ArticlesDir  string
	SeedDir      string
	Manifest     bool
	ManifestPath string
	S3           S3Config
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

type AIProvider string

const (
	AIProviderOpenAI           AIProvider = "openai"
	AIProviderOpenAICompatible AIProvider = "openai-compatible"
	AIProviderAnthropic        AIProvider = "anthropic"
	AIProviderDeepSeek         AIProvider = "deepseek"
)

type AIConfig struct {
	Provider       AIProvider
	APIKey         string
	Endpoint       string
	Model          string
	MaxTokens      int
	TimeoutSeconds int
	// RateLimitPerMinute caps generation requests per admin; 0 disables it.
	RateLimitPerMinute int
}

// AdminConfig seeds the first admin account when the users table is empty.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

type rawAppConfig struct {
	Port           int               `yaml:"port"`
	Env            string            `yaml:"env"`
	JWTSecret      string            `yaml:"jwt_secret"`
	Timezone       string            `yaml:"timezone"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	Paths          rawPathsConfig    `yaml:"paths"`
	Database       rawDatabaseConfig `yaml:"database"`
	Redis          rawRedisConfig    `yaml:"redis"`
	Storage        rawStorageConfig  `yaml:"storage"`
	AI             rawAIConfig       `yaml:"ai"`
	Admin          rawAdminConfig    `yaml:"admin"`
}

type rawPathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
}

type rawDatabaseConfig struct {
	Driver    string            `yaml:"driver"`
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Path      string            `yaml:"path"`
	Params    map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	Enable   *bool  `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawStorageConfig struct {
	Backend      string      `yaml:"backend"`
	ArticlesDir  string      `yaml:"articles_dir"`
	SeedDir      string      `yaml:"seed_dir"`
	Manifest     *bool       `yaml:"manifest"`
	ManifestPath string      `yaml:"manifest_path"`
	S3           rawS3Config `yaml:"s3"`
}

type rawS3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       *bool  `yaml:"path_style"`
}

type rawAIConfig struct {
	Provider           string `yaml:"provider"`
	APIKey             string `yaml:"api_key"`
	Endpoint           string `yaml:"endpoint"`
	Model              string `yaml:"model"`
	MaxTokens          int    `yaml:"max_tokens"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	RateLimitPerMinute *int   `yaml:"rate_limit_per_minute"`
}

type rawAdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}
