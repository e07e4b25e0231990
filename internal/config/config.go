package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Worker  WorkerConfig
	Catalog CatalogConfig
	DB      DatabaseConfig
	Ranking RankingConfig
	Layout  LayoutConfig
	Cache   CacheConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	RateLimitRPS    int
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

// CatalogConfig selects where the site snapshot comes from. An empty Path or
// OntologyPath means the snapshot embedded in the binary.
type CatalogConfig struct {
	Source       string
	Path         string
	OntologyPath string
}

type DatabaseConfig struct {
	Path string
}

type RankingConfig struct {
	HotThreshold int
}

type LayoutConfig struct {
	RootGap     float64
	SiblingGap  float64
	FallbackGap float64
}

type CacheConfig struct {
	Size int
}

type LoggingConfig struct {
	Level string
}

const (
	SourceYAML   = "yaml"
	SourceSQLite = "sqlite"
)

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 10),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
			MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Catalog: CatalogConfig{
			Source:       getEnv("CATALOG_SOURCE", SourceYAML),
			Path:         getEnv("CATALOG_PATH", ""),
			OntologyPath: getEnv("ONTOLOGY_PATH", ""),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/siting.db"),
		},
		Ranking: RankingConfig{
			HotThreshold: getEnvInt("HOT_THRESHOLD", 80),
		},
		Layout: LayoutConfig{
			RootGap:     getEnvFloat("LAYOUT_ROOT_GAP", 280),
			SiblingGap:  getEnvFloat("LAYOUT_SIBLING_GAP", 120),
			FallbackGap: getEnvFloat("LAYOUT_FALLBACK_GAP", 80),
		},
		Cache: CacheConfig{
			Size: getEnvInt("CACHE_SIZE", 128),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 rps, got %d", c.Server.RateLimitRPS)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Worker.Count)
	}
	if c.Worker.BufferSize < 0 {
		return fmt.Errorf("worker buffer size must not be negative, got %d", c.Worker.BufferSize)
	}

	switch c.Catalog.Source {
	case SourceYAML:
	case SourceSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH is required when CATALOG_SOURCE is %s", SourceSQLite)
		}
	default:
		return fmt.Errorf("invalid catalog source: %s", c.Catalog.Source)
	}

	if c.Ranking.HotThreshold < 0 || c.Ranking.HotThreshold > 100 {
		return fmt.Errorf("hot threshold must be within 0-100, got %d", c.Ranking.HotThreshold)
	}

	if c.Layout.RootGap <= 0 || c.Layout.SiblingGap <= 0 || c.Layout.FallbackGap <= 0 {
		return fmt.Errorf("layout gaps must be positive")
	}

	if c.Cache.Size < 1 {
		return fmt.Errorf("cache size must be at least 1, got %d", c.Cache.Size)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
