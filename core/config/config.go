package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	MCP        MCPConfig
	Paths      PathsConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	WorkerPool WorkerPoolConfig
	Uploads    UploadsConfig
	Webhooks   WebhooksConfig
	Assistant  AssistantConfig
}

type AppConfig struct {
	Name               string
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type MCPConfig struct {
	Port string
	Host string
}

type PathsConfig struct {
	Statics  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

// CacheConfig configures the read-through cache tiers.
// Reference data (catalog, settings) lives in the persistent tier, short lived
// UI snapshots (public settings, dashboard) in the in-memory volatile tier.
type CacheConfig struct {
	Enabled          bool
	Namespace        string
	ReferenceTTL     time.Duration
	VolatileTTL      time.Duration
	MemoryQuotaBytes int64
	BusChannel       string
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

type UploadsConfig struct {
	MaxResumeBytes int64
	MaxImageBytes  int64
	ThumbnailWidth int
}

type WebhooksConfig struct {
	LeadURLs []string
	Secret   string
	Timeout  time.Duration
	Retries  int
}

type AssistantConfig struct {
	GeminiAPIKey string
	Model        string
}

// Global provides access to the loaded configuration for the cobra commands.
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	storages := getEnv("APP_BASE_DIR", "storages")

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Name:               getEnv("APP_NAME", "JivIT Site API"),
		Version:            "v1.4.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              getEnvBool("APP_DEBUG", false),
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(storages, "jivit.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "jivit:"),
	}

	cacheCfg := CacheConfig{
		Enabled:          getEnvBool("CACHE_ENABLED", true),
		Namespace:        getEnv("CACHE_NAMESPACE", "jivit_cache_"),
		ReferenceTTL:     getEnvDuration("CACHE_TTL", 10*time.Minute),
		VolatileTTL:      getEnvDuration("CACHE_VOLATILE_TTL", 5*time.Minute),
		MemoryQuotaBytes: getEnvInt64("CACHE_MEMORY_QUOTA_BYTES", 5*1024*1024),
		BusChannel:       getEnv("CACHE_BUS_CHANNEL", "cache_invalidation"),
	}

	var leadWebhooks []string
	if v := os.Getenv("LEAD_WEBHOOK_URLS"); v != "" {
		leadWebhooks = strings.Split(v, ",")
	}

	cfg := &Config{
		App:      appCfg,
		MCP:      MCPConfig{Port: getEnv("MCP_PORT", "8080"), Host: getEnv("MCP_HOST", "localhost")},
		Paths:    PathsConfig{Statics: getEnv("PATH_STATICS", "statics"), Storages: storages},
		Database: dbCfg,
		Cache:    cacheCfg,
		WorkerPool: WorkerPoolConfig{
			Size:      getEnvInt("WORKER_POOL_SIZE", 4),
			QueueSize: getEnvInt("WORKER_QUEUE_SIZE", 250),
		},
		Uploads: UploadsConfig{
			MaxResumeBytes: getEnvInt64("UPLOAD_MAX_RESUME_BYTES", 10*1024*1024),
			MaxImageBytes:  getEnvInt64("UPLOAD_MAX_IMAGE_BYTES", 8*1024*1024),
			ThumbnailWidth: getEnvInt("UPLOAD_THUMBNAIL_WIDTH", 480),
		},
		Webhooks: WebhooksConfig{
			LeadURLs: leadWebhooks,
			Secret:   getEnv("LEAD_WEBHOOK_SECRET", ""),
			Timeout:  getEnvDuration("LEAD_WEBHOOK_TIMEOUT", 10*time.Second),
			Retries:  getEnvInt("LEAD_WEBHOOK_RETRIES", 3),
		},
		Assistant: AssistantConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			Model:        getEnv("ASSISTANT_MODEL", "gemini-2.5-flash"),
		},
	}

	Global = cfg
	return cfg, nil
}
