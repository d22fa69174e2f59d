package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	StorageBaseURL   string
	StoragePath      string
	GeoIPDBPath      string
	DefaultLocale    string
	AllowedOrigins   []string
	VeoAPIKey        string
	VeoModel         string
	VeoBaseURL       string
	VeoPollInterval  time.Duration
	MaxUploadBytes   int64
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             port,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "en"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		VeoAPIKey:        os.Getenv("VEO_API_KEY"),
		VeoModel:         getEnv("VEO_MODEL", "veo-2.0-generate-001"),
		VeoBaseURL:       getEnv("VEO_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		VeoPollInterval:  time.Second * time.Duration(getEnvInt("VEO_POLL_INTERVAL_SECONDS", 10)),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 8)) * 1024 * 1024,
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if _, err := url.Parse(cfg.VeoBaseURL); err != nil {
		return nil, fmt.Errorf("VEO_BASE_URL is invalid: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
