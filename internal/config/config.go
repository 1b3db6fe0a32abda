package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default Overpass mirrors ordered by typical response time: the fastest
// community mirror first, the official instance second, a backup last.
var defaultOverpassEndpoints = []string{
	"https://overpass.kumi.systems/api/interpreter",
	"https://overpass-api.de/api/interpreter",
	"https://maps.mail.ru/osm/tools/overpass/api/interpreter",
}

type Config struct {
	Env                string
	HTTPAddr           string
	JWTAccessSecret    string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	RedisURL           string
	GeminiAPIKey       string
	GeminiModel        string
	OverpassEndpoints  []string
	NominatimURL       string
	ClientUserAgent    string
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	endpoints := splitCSV(getEnv("OVERPASS_ENDPOINTS", ""))
	if len(endpoints) == 0 {
		endpoints = defaultOverpassEndpoints
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:           getEnv("REDIS_URL", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OverpassEndpoints:  endpoints,
		NominatimURL:       getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		ClientUserAgent:    getEnv("CLIENT_USER_AGENT", "SmartLocations/1.0"),
		CacheTTL:           mustDuration(getEnv("CACHE_TTL", "10m")),
		CacheSweepInterval: mustDuration(getEnv("CACHE_SWEEP_INTERVAL", "10m")),
		RateLimitRPS:       mustFloat(getEnv("RATE_LIMIT_RPS", "10")),
		RateLimitBurst:     mustInt(getEnv("RATE_LIMIT_BURST", "20")),
	}

	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be a positive duration")
	}
	if cfg.CacheSweepInterval <= 0 {
		return nil, fmt.Errorf("CACHE_SWEEP_INTERVAL must be a positive duration")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// GetJWTAccessSecret implements httpkit.JWTConfig.
func (c *Config) GetJWTAccessSecret() string {
	return c.JWTAccessSecret
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
