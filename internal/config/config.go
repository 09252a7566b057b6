package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	RedisURL             string
	JWTSecret            string
	JWTExpirySeconds     int64
	RabbitMQURL          string
	RabbitMQWorkerMode   string
	CorsAllowedOrigins   []string
	DefaultCountryCode   string
	MaxFileSizeBytes     int64
	AnalyticsCacheTTL    time.Duration
	WSHeartbeatInterval  time.Duration
	WSOrdersPollInterval time.Duration
	TrialPeriodDays      int

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
}

func Load() Config {
	cfg := Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8090"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTExpirySeconds:     getEnvInt64("JWT_EXPIRY", 3600),
		RabbitMQURL:          getEnv("RABBITMQ_URL", ""),
		RabbitMQWorkerMode:   getEnv("RABBITMQ_WORKER_MODE", "daemon"),
		CorsAllowedOrigins:   splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		DefaultCountryCode:   getEnv("DEFAULT_COUNTRY_CODE", "+251"),
		MaxFileSizeBytes:     getEnvInt64("MAX_FILE_SIZE", 5*1024*1024),
		AnalyticsCacheTTL:    getEnvDuration("ANALYTICS_CACHE_TTL", 5*time.Minute),
		WSHeartbeatInterval:  getEnvDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second),
		WSOrdersPollInterval: getEnvDuration("WS_ORDERS_POLL_INTERVAL", 5*time.Second),
		TrialPeriodDays:      int(getEnvInt64("TRIAL_PERIOD_DAYS", 14)),

		ObjectStoreEndpoint:        getEnv("OBJECT_STORE_ENDPOINT", ""),
		ObjectStoreRegion:          getEnv("OBJECT_STORE_REGION", "auto"),
		ObjectStoreAccessKeyID:     getEnv("OBJECT_STORE_ACCESS_KEY_ID", ""),
		ObjectStoreSecretAccessKey: getEnv("OBJECT_STORE_SECRET_ACCESS_KEY", ""),
		ObjectStoreBucket:          getEnv("OBJECT_STORE_BUCKET", ""),
		ObjectStorePublicBaseURL:   getEnv("OBJECT_STORE_PUBLIC_BASE_URL", ""),
	}

	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}

	return cfg
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
