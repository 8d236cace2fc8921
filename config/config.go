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

const (
	AVATAR_SIZE = 64

	AuthModeFirebase = "firebase"
	AuthModeJWT      = "jwt"

	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type DBConfig struct {
	User          string
	Pass          string
	Host          string
	Name          string
	TLS           bool
	MaxConns      int
	RunMigrations bool
}

type AuthConfig struct {
	Mode      string
	JWTSecret string
	JWTIssuer string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type FanoutConfig struct {
	Workers  int
	MaxTries uint
}

type Config struct {
	Env          string // "local" or "prod"
	Port         string
	GinMode      string
	FEOrigins    []string
	Store        string
	DB           DBConfig
	RedisAddr    string
	RedisPass    string
	CacheTTL     time.Duration
	NatsUrl      string
	NatsPrefix   string
	OtelEndpoint string
	Auth         AuthConfig
	Bucket       string
	UploadDir    string
	Fanout       FanoutConfig
	RateLimit    RateLimitConfig
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 50)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("FANOUT_WORKERS", 64)
	if err != nil {
		return nil, err
	}
	maxTries, err := getEnvInt("FANOUT_MAX_TRIES", 3)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("CACHE_TTL", 0)
	if err != nil {
		return nil, err
	}
	rps, err := getEnvFloat("RATE_RPS", 20)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("RATE_BURST", 40)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:       getEnv("APP_ENV", "local"),
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		FEOrigins: strings.Split(getEnv("FE_ORIGINS", "http://localhost:3000"), ";"),
		Store:     getEnv("STORE", StoreMySQL),
		DB: DBConfig{
			User:          getEnv("DB_USER", "root"),
			Pass:          getEnv("DB_PASS", ""),
			Host:          getEnv("DB_HOST", "localhost:3306"),
			Name:          getEnv("DB_NAME", "next-social"),
			TLS:           getEnvBool("DB_TLS", false),
			MaxConns:      maxConns,
			RunMigrations: getEnvBool("DB_RUN_MIGRATIONS", true),
		},
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisPass:    getEnv("REDIS_PASSWORD", ""),
		CacheTTL:     cacheTTL,
		NatsUrl:      getEnv("NATS_URL", ""),
		NatsPrefix:   getEnv("NATS_PREFIX", "realtime"),
		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Auth: AuthConfig{
			Mode:      getEnv("AUTH_MODE", AuthModeFirebase),
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTIssuer: getEnv("JWT_ISSUER", ""),
		},
		Bucket:    getEnv("STORAGE_BUCKET", ""),
		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		Fanout: FanoutConfig{
			Workers:  workers,
			MaxTries: uint(maxTries),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeFirebase:
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET must be set when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}
	if c.Store != StoreMySQL && c.Store != StoreMemory {
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.Fanout.Workers < 1 {
		return errors.New("FANOUT_WORKERS must be positive")
	}
	if c.Fanout.MaxTries < 1 {
		return errors.New("FANOUT_MAX_TRIES must be positive")
	}
	return nil
}

func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

// DSN builds the go-sql-driver/mysql data source name.
func (db *DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?tls=%t&parseTime=true&multiStatements=true",
		db.User, db.Pass, db.Host, db.Name, db.TLS)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%v must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%v must be a number: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%v must be a duration: %w", key, err)
	}
	return parsed, nil
}
