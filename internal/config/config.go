// Package config loads and validates process configuration from the environment
// and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration required by the API and CLI processes.
// No business logic should depend on raw environment variables.
type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Import ImportConfig
	Seed   SeedConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	// Driver is "pgx" (Postgres) or "sqlite" (embedded, single node).
	Driver string

	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string

	// Path is the sqlite file; ":memory:" keeps everything in process.
	Path string
}

// RedisConfig is optional. An empty Host disables the stats cache and the import lock.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int
}

type ImportConfig struct {
	MaxUploadBytes int64
	LockTTL        time.Duration
}

// SeedConfig is the first admin account created by `numctl seed`.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load reads .env (if present), then builds and validates Config from the environment.
// Env vars override .env.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DB_DRIVER", "pgx")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_PATH", "inventory.db")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("BCRYPT_COST", "12")
	v.SetDefault("IMPORT_MAX_UPLOAD_BYTES", strconv.Itoa(10<<20))
	v.SetDefault("IMPORT_LOCK_TTL", "5m")
	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@example.com")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	c := Config{}
	var parseErrs []error

	str := func(key string) string { return strings.TrimSpace(v.GetString(key)) }
	num := func(key string) int {
		n, err := mustInt(key, v.GetString(key))
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return n
	}
	dur := func(key string) time.Duration {
		d, err := optionalDuration(key, v.GetString(key))
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return d
	}

	c.App.Env = str("APP_ENV")
	c.App.Port = num("APP_PORT")

	c.DB.Driver = str("DB_DRIVER")
	c.DB.Host = str("DB_HOST")
	c.DB.Port = num("DB_PORT")
	c.DB.User = str("DB_USER")
	c.DB.Password = v.GetString("DB_PASSWORD")
	c.DB.Name = str("DB_NAME")
	c.DB.SSLMode = str("DB_SSLMODE")
	c.DB.Path = str("DB_PATH")

	c.Redis.Host = str("REDIS_HOST")
	c.Redis.Port = num("REDIS_PORT")
	c.Redis.Password = v.GetString("REDIS_PASSWORD")
	c.Redis.DB = num("REDIS_DB")

	c.Auth.JWTSecret = v.GetString("JWT_SECRET")
	c.Auth.JWTIssuer = str("JWT_ISSUER")
	c.Auth.JWTAudience = str("JWT_AUDIENCE")
	// Duration env vars are optional; defaults applied in Validate().
	c.Auth.AccessTokenTTL = dur("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = dur("JWT_REFRESH_TTL")
	c.Auth.BcryptCost = num("BCRYPT_COST")

	c.Import.MaxUploadBytes = int64(num("IMPORT_MAX_UPLOAD_BYTES"))
	c.Import.LockTTL = dur("IMPORT_LOCK_TTL")

	c.Seed.AdminUsername = str("SEED_ADMIN_USERNAME")
	c.Seed.AdminEmail = str("SEED_ADMIN_EMAIL")
	c.Seed.AdminPassword = v.GetString("SEED_ADMIN_PASSWORD")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every problem at once and fills defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	switch c.DB.Driver {
	case "pgx":
		errs = append(errs, c.validatePostgres()...)
	case "sqlite":
		if c.DB.Path == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_DRIVER=sqlite is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be pgx or sqlite, got %q", c.DB.Driver))
	}

	if c.Redis.Host != "" && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("REDIS_DB must not be negative, got %d", c.Redis.DB))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}

	if c.Import.MaxUploadBytes <= 0 {
		c.Import.MaxUploadBytes = 10 << 20
	}
	if c.Import.LockTTL <= 0 {
		c.Import.LockTTL = 5 * time.Minute
	}

	return joinErrors(errs)
}

func (c *Config) validatePostgres() []error {
	var errs []error
	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// PostgresDSN is the key/value DSN for the pgx stdlib driver.
func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DB.Driver == "sqlite" {
		return c.DB.Path
	}
	return c.PostgresDSN()
}

func (c Config) RedisEnabled() bool { return c.Redis.Host != "" }

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key, raw string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalDuration(key, raw string) (time.Duration, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
