package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Profile store backends.
const (
	ProfileStoreSession = "session"
	ProfileStoreRedis   = "redis"
	ProfileStoreMemory  = "memory"
)

type APIConfig struct {
	BaseURL         string
	Timeout         time.Duration
	ExemptEndpoints []string
	// ContentCacheTTL is how long anonymous visitors share public lists.
	ContentCacheTTL time.Duration
}

type AuthConfig struct {
	// JWTSecret verifies the API's access tokens. The portal never signs
	// production tokens with it.
	JWTSecret     string
	CookieName    string
	SessionSecret string
	RulesFile     string
	CookieSecure  bool
	// DevTokens routes the token minting endpoints. Never enable it where
	// the API's real secret is configured.
	DevTokens bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// ProfileTTL bounds how long a cached profile outlives its session.
	ProfileTTL time.Duration
}

type ObservabilityConfig struct {
	ServiceName  string
	MetricsAddr  string
	PprofAddr    string
	OTLPEndpoint string
}

type Config struct {
	ServerPort    string
	API           APIConfig
	Auth          AuthConfig
	ProfileStore  string
	Redis         RedisConfig
	CORSOrigins   []string
	LogLevel      zapcore.Level
	Observability ObservabilityConfig
}

func Load() (*Config, error) {
	timeout, err := time.ParseDuration(getEnvOrDefault("API_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	contentTTL, err := time.ParseDuration(getEnvOrDefault("CONTENT_CACHE_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONTENT_CACHE_TTL: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	profileTTL, err := time.ParseDuration(getEnvOrDefault("PROFILE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROFILE_TTL: %w", err)
	}
	cookieSecure, err := strconv.ParseBool(getEnvOrDefault("COOKIE_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}
	devTokens, err := strconv.ParseBool(getEnvOrDefault("DEV_TOKENS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEV_TOKENS: %w", err)
	}
	level, err := zapcore.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		ServerPort: getEnvOrDefault("SERVER_PORT", "8091"),
		API: APIConfig{
			BaseURL:         getEnvOrDefault("API_BASE_URL", "http://localhost:8080/api/v1"),
			Timeout:         timeout,
			ContentCacheTTL: contentTTL,
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET_KEY"),
			CookieName:    getEnvOrDefault("ACCESS_COOKIE_NAME", "accessToken"),
			SessionSecret: getEnvOrDefault("SESSION_SECRET", ""),
			RulesFile:     os.Getenv("ACCESS_RULES_FILE"),
			CookieSecure:  cookieSecure,
			DevTokens:     devTokens,
		},
		ProfileStore: strings.ToLower(getEnvOrDefault("PROFILE_STORE", ProfileStoreSession)),
		Redis: RedisConfig{
			Addr:       getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         redisDB,
			ProfileTTL: profileTTL,
		},
		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		LogLevel:    level,
		Observability: ObservabilityConfig{
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "techsupport-portal"),
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			PprofAddr:    getEnvOrDefault("PPROF_ADDR", "localhost:6060"),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	if raw, ok := os.LookupEnv("API_EXEMPT_ENDPOINTS"); ok {
		cfg.API.ExemptEndpoints = splitList(raw)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}
	if cfg.Auth.SessionSecret == "" {
		cfg.Auth.SessionSecret = cfg.Auth.JWTSecret
	}
	switch cfg.ProfileStore {
	case ProfileStoreSession, ProfileStoreRedis, ProfileStoreMemory:
	default:
		return nil, fmt.Errorf("PROFILE_STORE must be one of session, redis, memory; got %q", cfg.ProfileStore)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
