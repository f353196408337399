package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProtocolHTTP is the only listener mode the service implements.
const ProtocolHTTP = "http"

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is built once by LoadConfig and passed explicitly to the components
// that need it; nothing reads the environment after startup.
//
// Example ENV:
//
//	PORT=8080
//	PROTOCOL=http
//	SERVER_BASE_PATH=/stock-service
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=stocks
//	REDIS_ADDR=localhost:6379
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings
	Redis    RedisConfig    // Redis cache settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        // PORT (or SERVER_PORT), required
	Protocol           string        // PROTOCOL, required, only "http"
	BasePath           string        // SERVER_BASE_PATH
	RequestTimeout     time.Duration // SERVER_REQUEST_TIMEOUT
	RateLimitPerMinute int           // RATE_LIMIT_PER_MINUTE, 0 disables
	CORSAllowedOrigins []string      // CORS_ALLOWED_ORIGINS, comma separated
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// RedisConfig configures the price cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// envFile is the optional dotenv file read before the environment.
var envFile = ".env"

// LoadConfig reads the configuration from the .env file (if present) and
// the environment.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Every problem found is reported in the returned error; the caller decides
// to abort startup.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Default values
	v.SetDefault("SERVER_BASE_PATH", "")
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "10s")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "stocks")
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "15s")

	// Optionally read from .env if present (common in local dev)
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	v.AutomaticEnv()
	_ = v.BindEnv("PORT", "PORT", "SERVER_PORT")
	_ = v.BindEnv("PROTOCOL")

	var errs []error
	duration := func(key string) time.Duration {
		raw := strings.TrimSpace(v.GetString(key))
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		}
		return d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               strings.TrimSpace(v.GetString("PORT")),
			Protocol:           strings.ToLower(strings.TrimSpace(v.GetString("PROTOCOL"))),
			BasePath:           strings.TrimRight(strings.TrimSpace(v.GetString("SERVER_BASE_PATH")), "/"),
			RequestTimeout:     duration("SERVER_REQUEST_TIMEOUT"),
			RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DBName:   v.GetString("POSTGRES_DB"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: duration("CACHE_TTL"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	cfg.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)

	errs = append(errs, validateConfig(cfg)...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// validateConfig lists every missing or invalid field of cfg.
func validateConfig(cfg *Config) []error {
	var errs []error

	switch {
	case cfg.Server.Port == "":
		errs = append(errs, errors.New("PORT is required"))
	default:
		if n, err := strconv.Atoi(cfg.Server.Port); err != nil || n < 1 || n > 65535 {
			errs = append(errs, fmt.Errorf("PORT: %q is not a valid TCP port", cfg.Server.Port))
		}
	}

	switch cfg.Server.Protocol {
	case "":
		errs = append(errs, errors.New("PROTOCOL is required"))
	case ProtocolHTTP:
	default:
		errs = append(errs, fmt.Errorf("PROTOCOL: unsupported value %q (only %q is implemented)", cfg.Server.Protocol, ProtocolHTTP))
	}

	if cfg.Server.BasePath != "" && !strings.HasPrefix(cfg.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("SERVER_BASE_PATH: %q must start with /", cfg.Server.BasePath))
	}
	if cfg.Server.RequestTimeout < 0 {
		errs = append(errs, errors.New("SERVER_REQUEST_TIMEOUT must not be negative"))
	}
	if cfg.Server.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}

	var missing []string
	if cfg.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if cfg.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if cfg.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", ")))
	}

	if cfg.Redis.Enabled() && cfg.Redis.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive when REDIS_ADDR is set"))
	}

	return errs
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
