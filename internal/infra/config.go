package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment
// variables. The struct is built once at startup and passed explicitly to
// component constructors; nothing reads the environment after load.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	VeoModel      string

	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioBucket        string
	MinioPublicBaseURL string
	StoragePath        string

	PollInterval      time.Duration
	PollMaxWait       time.Duration
	GenerationWorkers int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		VeoModel:      getEnv("VEO_MODEL", "veo-3.1-generate-preview"),

		MinioEndpoint:      os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:     firstEnv("MINIO_ACCESS_KEY", "MINIO_ACCESS_KEY_ID"),
		MinioSecretKey:     firstEnv("MINIO_SECRET_KEY", "MINIO_SECRET_ACCESS_KEY"),
		MinioBucket:        getEnv("MINIO_BUCKET", "media-assets"),
		MinioPublicBaseURL: os.Getenv("MINIO_PUBLIC_BASE_URL"),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),

		PollInterval:      time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 20)),
		PollMaxWait:       time.Second * time.Duration(getEnvInt("POLL_MAX_WAIT_SECONDS", 600)),
		GenerationWorkers: getEnvInt("GENERATION_WORKERS", 2),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.PollInterval <= 0 || cfg.PollMaxWait <= 0 {
		return nil, fmt.Errorf("poll interval and max wait must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
