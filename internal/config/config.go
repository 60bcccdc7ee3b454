package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the server, the scheduler and the librarian client
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	Storage   StorageConfig   `mapstructure:",squash"`
	Client    ClientConfig    `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"DATABASE_DRIVER"`
	URL             string        `mapstructure:"DATABASE_URL"`
	Host            string        `mapstructure:"DATABASE_HOST"`
	Port            string        `mapstructure:"DATABASE_PORT"`
	Name            string        `mapstructure:"DATABASE_NAME"`
	User            string        `mapstructure:"DATABASE_USER"`
	Password        string        `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string        `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"REDIS_URL"`
	Host     string        `mapstructure:"REDIS_HOST"`
	Port     string        `mapstructure:"REDIS_PORT"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	CacheTTL time.Duration `mapstructure:"REDIS_CACHE_TTL"`
}

type SchedulerConfig struct {
	FineSpec string `mapstructure:"SCHEDULER_FINE_SPEC"`
	Timezone string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	FineDailyRate       string `mapstructure:"FINE_DAILY_RATE"`
	LoanPeriodDays      int    `mapstructure:"LOAN_PERIOD_DAYS"`
	RenewPeriodDays     int    `mapstructure:"RENEW_PERIOD_DAYS"`
	MaxActiveBorrowings int    `mapstructure:"MAX_ACTIVE_BORROWINGS"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"JWT_TTL"`
}

type StorageConfig struct {
	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	MaxUploadBytes int64  `mapstructure:"UPLOAD_MAX_BYTES"`
}

type ClientConfig struct {
	BaseURL      string        `mapstructure:"LIBRARIAN_API_URL"`
	Timeout      time.Duration `mapstructure:"LIBRARIAN_TIMEOUT"`
	SessionStore string        `mapstructure:"LIBRARIAN_SESSION_STORE"`
	SessionFile  string        `mapstructure:"LIBRARIAN_SESSION_FILE"`
	FineRate     string        `mapstructure:"LIBRARIAN_FINE_RATE"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Session store kinds understood by the librarian client
const (
	SessionStoreFile  = "file"
	SessionStoreRedis = "redis"
)

var defaults = map[string]any{
	"SERVER_PORT":                "8080",
	"SERVER_HOST":                "0.0.0.0",
	"ENV":                        "development",
	"SERVER_READ_TIMEOUT":        "15s",
	"SERVER_WRITE_TIMEOUT":       "60s",
	"DATABASE_DRIVER":            "postgres",
	"DATABASE_URL":               "",
	"DATABASE_HOST":              "localhost",
	"DATABASE_PORT":              "5432",
	"DATABASE_NAME":              "library",
	"DATABASE_USER":              "library",
	"DATABASE_PASSWORD":          "",
	"DATABASE_SSLMODE":           "disable",
	"DATABASE_MAX_OPEN_CONNS":    25,
	"DATABASE_MAX_IDLE_CONNS":    5,
	"DATABASE_CONN_MAX_LIFETIME": "5m",
	"REDIS_URL":                  "",
	"REDIS_HOST":                 "localhost",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"REDIS_CACHE_TTL":            "5m",
	"SCHEDULER_FINE_SPEC":        "0 0 0 * * *",
	"SCHEDULER_TIMEZONE":         "UTC",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"FINE_DAILY_RATE":            "1.00",
	"LOAN_PERIOD_DAYS":           14,
	"RENEW_PERIOD_DAYS":          14,
	"MAX_ACTIVE_BORROWINGS":      5,
	"JWT_SECRET":                 "",
	"JWT_TTL":                    "24h",
	"UPLOAD_DIR":                 "uploads/digital-books",
	"UPLOAD_MAX_BYTES":           50 << 20,
	"LIBRARIAN_API_URL":          "http://localhost:8080",
	"LIBRARIAN_TIMEOUT":          "10s",
	"LIBRARIAN_SESSION_STORE":    SessionStoreFile,
	"LIBRARIAN_SESSION_FILE":     "",
	"LIBRARIAN_FINE_RATE":        "1.00",
	"HEALTH_CHECK_TIMEOUT":       "5s",
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// .env values never override variables already present in the environment
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks the settings shared by every binary
func (c *Config) Validate() error {
	if _, err := decimal.NewFromString(c.Business.FineDailyRate); err != nil {
		return fmt.Errorf("FINE_DAILY_RATE must be a valid decimal: %w", err)
	}

	if _, err := decimal.NewFromString(c.Client.FineRate); err != nil {
		return fmt.Errorf("LIBRARIAN_FINE_RATE must be a valid decimal: %w", err)
	}

	if c.Business.LoanPeriodDays <= 0 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be greater than 0")
	}

	if c.Business.RenewPeriodDays <= 0 {
		return fmt.Errorf("RENEW_PERIOD_DAYS must be greater than 0")
	}

	if c.Business.MaxActiveBorrowings <= 0 {
		return fmt.Errorf("MAX_ACTIVE_BORROWINGS must be greater than 0")
	}

	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	if c.Client.Timeout <= 0 {
		return fmt.Errorf("LIBRARIAN_TIMEOUT must be greater than 0")
	}

	switch c.Client.SessionStore {
	case SessionStoreFile, SessionStoreRedis:
	default:
		return fmt.Errorf("LIBRARIAN_SESSION_STORE must be %q or %q", SessionStoreFile, SessionStoreRedis)
	}

	return nil
}

// ValidateServer checks the settings only the API server and the scheduler need
func (c *Config) ValidateServer() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	switch c.Database.Driver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or pgx, got %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be greater than 0")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	return nil
}

// DSN returns the connection string for the configured database.
// DATABASE_URL wins over the individual host settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}

// Addr returns the host:port pair of the redis server
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetFineDailyRate returns the server-side fine per overdue day
func (c *Config) GetFineDailyRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.FineDailyRate)
	return rate
}

// GetClientFineRate returns the rate the client uses for its provisional estimate
func (c *Config) GetClientFineRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Client.FineRate)
	return rate
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}

// GetSchedulerLocation returns the location cron expressions are evaluated in
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
