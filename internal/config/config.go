package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	// upstream endpoints
	LabyBaseURL    string
	GalleryBaseURL string

	// gallery rendering
	ScrapeTimeout time.Duration

	// RedisDSN is optional; empty disables the response cache.
	RedisDSN string
	CacheTTL time.Duration

	CORSOrigins []string

	// rate limiting (requests per second per client IP)
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (Config, error) {
	// .env is a dev convenience; absence is not an error
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		LogLevel:       getenvDefault("LOG_LEVEL", "info"),
		LabyBaseURL:    getenvDefault("LABY_BASE_URL", "https://laby.net/api/v3"),
		GalleryBaseURL: getenvDefault("GALLERY_BASE_URL", "https://namemc.com"),
		RedisDSN:       os.Getenv("REDIS_DSN"),
	}

	timeout, err := getenvSeconds("SCRAPE_TIMEOUT_SECONDS", 15)
	if err != nil {
		return Config{}, err
	}
	cfg.ScrapeTimeout = timeout

	ttl, err := getenvSeconds("CACHE_TTL_SECONDS", 300)
	if err != nil {
		return Config{}, err
	}
	cfg.CacheTTL = ttl

	rps := getenvDefault("RATE_LIMIT_RPS", "5")
	cfg.RateLimitRPS, err = strconv.ParseFloat(rps, 64)
	if err != nil || cfg.RateLimitRPS <= 0 {
		return Config{}, errors.New("RATE_LIMIT_RPS must be a positive number")
	}

	burst := getenvDefault("RATE_LIMIT_BURST", "10")
	cfg.RateLimitBurst, err = strconv.Atoi(burst)
	if err != nil || cfg.RateLimitBurst <= 0 {
		return Config{}, errors.New("RATE_LIMIT_BURST must be a positive integer")
	}

	// parse CORS origins
	corsOrigins := getenvDefault("CORS_ORIGINS", "")
	if corsOrigins != "" {
		cfg.CORSOrigins = strings.Split(corsOrigins, ",")
		for i := range cfg.CORSOrigins {
			cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
		}
	} else {
		cfg.CORSOrigins = []string{"*"}
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvSeconds(k string, def int) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.New(k + " must be a positive integer (seconds)")
	}
	return time.Duration(n) * time.Second, nil
}
