package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Host            string
	Port            string
	UpstreamBaseURL string
	StoreDir        string
	StorePolicy     string // "stable" or "timestamped"
	JwtSecret       string // optional; empty disables the bearer-token guard
	DatabaseURL     string // optional; empty disables the generation ledger
	GenerateTimeout time.Duration
}

func LoadConfig() *Config {
	// A missing .env is fine in containerized deployments where the
	// environment is injected directly.
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	cfg := &Config{
		Host:            os.Getenv("HOST"),
		Port:            os.Getenv("PORT"),
		UpstreamBaseURL: os.Getenv("UPSTREAM_BASE_URL"),
		StoreDir:        os.Getenv("STORE_DIR"),
		StorePolicy:     os.Getenv("STORE_POLICY"),
		JwtSecret:       os.Getenv("JWT_SECRET"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		GenerateTimeout: 720 * time.Second,
	}

	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.UpstreamBaseURL == "" {
		cfg.UpstreamBaseURL = "http://localhost:8000"
	}
	if cfg.StoreDir == "" {
		cfg.StoreDir = "public/videos"
	}
	if cfg.StorePolicy == "" {
		cfg.StorePolicy = "stable"
	}
	if cfg.StorePolicy != "stable" && cfg.StorePolicy != "timestamped" {
		log.Fatalf("STORE_POLICY must be \"stable\" or \"timestamped\", got %q", cfg.StorePolicy)
	}

	// The generation pipeline upstream can take ~10 minutes; the 720s
	// default must only be shortened deliberately (e.g. in dev).
	if raw := os.Getenv("GENERATE_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			log.Fatalf("GENERATE_TIMEOUT_SECONDS must be a positive integer, got %q", raw)
		}
		cfg.GenerateTimeout = time.Duration(secs) * time.Second
	}

	if cfg.JwtSecret == "" {
		log.Warn("JWT_SECRET is not set; API endpoints will not require authentication.")
	}
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set; generation requests will not be recorded.")
	}

	return cfg
}
