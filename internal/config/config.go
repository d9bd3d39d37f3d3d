package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// HTTPConfig contains web server settings.
type HTTPConfig struct {
	Port         string `yaml:"port"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

// DatabaseConfig selects and locates the record store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	Path   string `yaml:"path"`   // SQLite database file path
	URL    string `yaml:"url"`    // Postgres connection string
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	BcryptCost int           `yaml:"bcrypt_cost"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// RedisConfig enables the Redis session store when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	minSecretLen = 32
)

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		HTTP:     HTTPConfig{Port: "8080", CookieSecure: true},
		Database: DatabaseConfig{Driver: DriverSQLite, Path: "zatigwera.db"},
		Auth:     AuthConfig{BcryptCost: 12, SessionTTL: 12 * time.Hour},
		Log:      LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables, and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTP.Port = getEnv("PORT", c.HTTP.Port)
	// Secure cookies stay on unless explicitly disabled for local development.
	if v, ok := os.LookupEnv("COOKIE_SECURE"); ok {
		c.HTTP.CookieSecure = v != "false"
	}

	c.Database.Driver = getEnv("DATABASE_DRIVER", c.Database.Driver)
	c.Database.Path = getEnv("DATABASE_PATH", c.Database.Path)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	cost, err := getEnvInt("BCRYPT_COST", c.Auth.BcryptCost)
	if err != nil {
		return err
	}
	c.Auth.BcryptCost = cost
	if v, ok := os.LookupEnv("SESSION_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration for SESSION_TTL: %w", err)
		}
		c.Auth.SessionTTL = ttl
	}

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	redisDB, err := getEnvInt("REDIS_DB", c.Redis.DB)
	if err != nil {
		return err
	}
	c.Redis.DB = redisDB

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	return nil
}

// Validate checks the settings every command needs. Settings only the web
// server uses are checked by ValidateServer.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.Auth.BcryptCost))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.Auth.SessionTTL))
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateServer checks the settings needed to sign session tokens.
func (c *Config) ValidateServer() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < minSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for HMAC-SHA256 security", minSecretLen)
	}
	return nil
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", l.Level, err)
	}
	return level, nil
}

// getEnv retrieves a non-empty environment variable with a fallback.
func getEnv(key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	db := c.Database.Path
	if c.Database.Driver == DriverPostgres {
		db = "*** (masked) ***"
	}
	redis := "disabled"
	if c.Redis.Addr != "" {
		redis = fmt.Sprintf("%s/%d", c.Redis.Addr, c.Redis.DB)
	}
	return fmt.Sprintf("Config{port: %s, db: %s %s, redis: %s, session_ttl: %s, bcrypt_cost: %d, log: %s, auth: *** (masked) ***}",
		c.HTTP.Port, c.Database.Driver, db, redis, c.Auth.SessionTTL, c.Auth.BcryptCost, c.Log.Level)
}
