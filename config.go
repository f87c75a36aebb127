package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all environment variables for the catalog service.
type Config struct {
	Env            string        // "development" or "production"
	Port           string        // HTTP port (default: 8080)
	CatalogSource  string        // CSV file path or http(s) URL
	SourceTimeout  time.Duration // timeout for remote CSV fetches
	RedisURL       string        // response cache backend
	AllowedOrigins []string      // CORS allowlist, "*" allows all
	BagTTL         time.Duration // idle bag session lifetime
	RateLimit      int           // requests per minute per IP
	RateBurst      int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// LoadConfig loads environment variables into a Config and validates them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Env:           getenv("APP_ENV", "development"),
		Port:          getenv("PORT", "8080"),
		CatalogSource: getenv("CATALOG_CSV_SOURCE", "./public/products.csv"),
		SourceTimeout: durenvs("CATALOG_SOURCE_TIMEOUT", 15),
		RedisURL:      getenv("REDIS_URL", "redis://localhost:6379"),
		BagTTL:        durenvs("BAG_TTL", 24*60*60),
		RateLimit:     atoienv("RATE_LIMIT_PER_MINUTE", 300),
		RateBurst:     atoienv("RATE_LIMIT_BURST", 50),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(strings.TrimSuffix(o, "/")); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	if cfg.CatalogSource == "" {
		return nil, fmt.Errorf("CATALOG_CSV_SOURCE is required")
	}
	if cfg.RateLimit < 1 || cfg.RateBurst < 1 {
		return nil, fmt.Errorf("rate limit settings must be positive")
	}

	return cfg, nil
}
