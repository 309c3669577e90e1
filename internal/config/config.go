package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Image store backends.
const (
	ImageStoreLocal = "local"
	ImageStoreS3    = "s3"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	DB         DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	ImageStore ImageStoreConfig
	S3         S3Config
	CORS       CORSConfig
	Worker     WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig contains Redis connection parameters. An empty Host disables caching.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig controls the product list cache.
type CacheConfig struct {
	ProductsTTL time.Duration
}

// ImageStoreConfig selects where uploaded image bytes are written.
type ImageStoreConfig struct {
	Backend  string // "local" or "s3"
	LocalDir string
	MaxBytes int64
}

// S3Config contains AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// WorkerConfig holds background worker intervals. Zero disables a worker.
type WorkerConfig struct {
	CacheWarmInterval time.Duration
}

// CORSConfig lists the hosts allowed to call the API from a browser.
type CORSConfig struct {
	AllowedHosts []string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on the real environment.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	// Database
	cfg.DB = DatabaseConfig{
		Host:         getEnv("DB_HOST", ""),
		Port:         getEnv("DB_PORT", "5432"),
		User:         getEnv("DB_USER", ""),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", ""),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Image storage
	cfg.ImageStore = ImageStoreConfig{
		Backend:  strings.ToLower(getEnv("IMAGE_STORE", ImageStoreLocal)),
		LocalDir: getEnv("IMAGE_DIR", "images"),
		MaxBytes: int64(getEnvInt("IMAGE_MAX_BYTES", 10<<20)),
	}

	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-southeast-3"),
		Bucket:          getEnv("S3_BUCKET", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	cfg.CORS = CORSConfig{
		AllowedHosts: splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000")),
	}

	// Durations
	var err error
	if cfg.DB.ConnMaxLifetime, err = parseDurationEnv("DB_CONN_MAX_LIFETIME", "5m"); err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}
	if cfg.Cache.ProductsTTL, err = parseDurationEnv("PRODUCTS_CACHE_TTL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid PRODUCTS_CACHE_TTL: %w", err)
	}
	if cfg.Worker.CacheWarmInterval, err = parseDurationEnv("CACHE_WARM_INTERVAL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid CACHE_WARM_INTERVAL: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	switch cfg.ImageStore.Backend {
	case ImageStoreLocal:
	case ImageStoreS3:
		if cfg.S3.Bucket == "" {
			return nil, errors.New("S3_BUCKET must be set when IMAGE_STORE=s3")
		}
	default:
		return nil, fmt.Errorf("IMAGE_STORE must be %q or %q, got %q", ImageStoreLocal, ImageStoreS3, cfg.ImageStore.Backend)
	}

	return cfg, nil
}

// RedisEnabled reports whether a Redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
