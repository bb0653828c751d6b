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

// Store drivers understood by the service.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// MongoConfig holds document store connection values.
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	AccessSecret          string
	RefreshSecret         string
	Issuer                string
	AccessTokenTTLMinutes int
	RefreshTokenTTLHours  int
	BcryptCost            int
	LoginMaxAttempts      int
	LoginWindowSeconds    int
	AdminEmail            string
	AdminPassword         string
}

// Load reads configuration from environment variables, applying defaults where possible.
// Secrets have no defaults; call Validate before serving traffic.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "product-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3001"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 1<<20),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: getEnv("MONGO_DATABASE", "products"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			AccessSecret:          os.Getenv("AUTH_ACCESS_SECRET"),
			RefreshSecret:         os.Getenv("AUTH_REFRESH_SECRET"),
			Issuer:                getEnv("AUTH_ISSUER", "product-service"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 15),
			RefreshTokenTTLHours:  getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_HOURS", 7*24),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			LoginMaxAttempts:      getEnvAsInt("AUTH_LOGIN_MAX_ATTEMPTS", 5),
			LoginWindowSeconds:    getEnvAsInt("AUTH_LOGIN_WINDOW_SECONDS", 900),
			AdminEmail:            os.Getenv("ADMIN_EMAIL"),
			AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		},
	}

	return cfg, nil
}

// Validate reports configuration the service must not start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.AccessSecret == "" {
		errs = append(errs, errors.New("AUTH_ACCESS_SECRET is required"))
	}
	if c.Auth.RefreshSecret == "" {
		errs = append(errs, errors.New("AUTH_REFRESH_SECRET is required"))
	}
	if c.Auth.AccessSecret != "" && c.Auth.AccessSecret == c.Auth.RefreshSecret {
		errs = append(errs, errors.New("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must differ"))
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive"))
	}
	if c.Auth.RefreshTTL() <= c.Auth.AccessTTL() {
		errs = append(errs, errors.New("refresh token TTL must be longer than access token TTL"))
	}
	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres store"))
		}
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTTL is the lifetime of access tokens.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTTL is the lifetime of refresh tokens.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLHours) * time.Hour
}

// LoginWindow is the period failed logins are counted over.
func (a AuthConfig) LoginWindow() time.Duration {
	return time.Duration(a.LoginWindowSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
