package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Summary returns the non-secret runtime settings shown on the health endpoint.
func Summary() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_version":        Global.App.Version,
		"app_environment":    Global.App.Environment,
		"app_debug":          Global.App.Debug,
		"db_driver":          Global.Database.Driver,
		"valkey_enabled":     Global.Database.ValkeyEnabled,
		"cache_enabled":      Global.Cache.Enabled,
		"cache_ttl":          Global.Cache.ReferenceTTL.String(),
		"cache_volatile_ttl": Global.Cache.VolatileTTL.String(),
		"worker_pool_size":   Global.WorkerPool.Size,
		"assistant_llm":      Global.Assistant.GeminiAPIKey != "",
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s", "10m") or plain milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}
