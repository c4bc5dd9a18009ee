package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port      string `env:"PORT,      default=3000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET, required"`
	// TokenTTL of zero issues session tokens without an expiry.
	TokenTTL time.Duration `env:"TOKEN_TTL, default=0s"`
	// BcryptWorkFactor is the bcrypt cost used when hashing passwords.
	BcryptWorkFactor int `env:"BCRYPT_WORK_FACTOR, default=12"`
	// LoginWorkers is the number of goroutines stamping last-login times.
	LoginWorkers int `env:"LOGIN_WORKERS, default=4"`

	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER, default=mongo"`
	DatabaseURL string `env:"DATABASE_URL, default=postgres://localhost:5432/messagely?sslmode=disable"`
	SQLitePath  string `env:"SQLITE_PATH,  default=messagely.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=messagely"`
}

type RedisConfig struct {
	// Addr empty disables Redis and with it Idempotency-Key replay.
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,        default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (want %s, %s or %s)", c.Store.Driver, DriverMongo, DriverPostgres, DriverSQLite)
	}
	if c.BcryptWorkFactor < bcrypt.MinCost || c.BcryptWorkFactor > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_WORK_FACTOR must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptWorkFactor)
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("config: TOKEN_TTL must not be negative")
	}
	if c.LoginWorkers <= 0 {
		return fmt.Errorf("config: LOGIN_WORKERS must be positive")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
// In development a .env file in the working directory is loaded first.
func Load(ctx context.Context) (*Config, error) {
	if env := os.Getenv("ENV"); env == "" || env == "development" || env == "dev" {
		_ = godotenv.Load()
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
