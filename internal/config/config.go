package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SchedulerConfig struct {
	SweepSchedule    string `mapstructure:"sweep_schedule"`
	ReminderSchedule string `mapstructure:"reminder_schedule"`
	// SweepOnStart runs the delinquency sweep once when the process starts.
	SweepOnStart bool `mapstructure:"sweep_on_start"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type BusinessConfig struct {
	Timezone                 string        `mapstructure:"timezone"`
	DelinquencyThresholdDays int           `mapstructure:"delinquency_threshold_days"`
	ReminderWindowDays       int           `mapstructure:"reminder_window_days"`
	PenaltyDailyRatePercent  string        `mapstructure:"penalty_daily_rate_percent"`
	PenaltyGraceDays         int           `mapstructure:"penalty_grace_days"`
	PenaltyCapPercent        string        `mapstructure:"penalty_cap_percent"`
	IdempotencyTTL           time.Duration `mapstructure:"idempotency_ttl"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from environment variables and an optional .env file.
// Keys are nested (server.port) and map to upper-case env vars (SERVER_PORT).
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("scheduler.sweep_schedule", "0 0 1 * * *")
	v.SetDefault("scheduler.reminder_schedule", "0 0 9 * * *")
	v.SetDefault("scheduler.sweep_on_start", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)

	v.SetDefault("business.timezone", "America/Asuncion")
	v.SetDefault("business.delinquency_threshold_days", 60)
	v.SetDefault("business.reminder_window_days", 3)
	v.SetDefault("business.penalty_daily_rate_percent", "0.1")
	v.SetDefault("business.penalty_grace_days", 0)
	v.SetDefault("business.penalty_cap_percent", "20")
	v.SetDefault("business.idempotency_ttl", "24h")

	v.SetDefault("health.timeout", "5s")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.DelinquencyThresholdDays <= 0 {
		return fmt.Errorf("BUSINESS_DELINQUENCY_THRESHOLD_DAYS must be greater than 0")
	}

	if c.Business.ReminderWindowDays < 0 {
		return fmt.Errorf("BUSINESS_REMINDER_WINDOW_DAYS must not be negative")
	}

	if c.Business.PenaltyGraceDays < 0 {
		return fmt.Errorf("BUSINESS_PENALTY_GRACE_DAYS must not be negative")
	}

	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE must be a valid IANA zone: %w", err)
	}

	rate, err := decimal.NewFromString(c.Business.PenaltyDailyRatePercent)
	if err != nil {
		return fmt.Errorf("BUSINESS_PENALTY_DAILY_RATE_PERCENT must be a valid decimal: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("BUSINESS_PENALTY_DAILY_RATE_PERCENT must not be negative")
	}

	capPct, err := decimal.NewFromString(c.Business.PenaltyCapPercent)
	if err != nil {
		return fmt.Errorf("BUSINESS_PENALTY_CAP_PERCENT must be a valid decimal: %w", err)
	}
	if capPct.IsNegative() {
		return fmt.Errorf("BUSINESS_PENALTY_CAP_PERCENT must not be negative")
	}

	if c.Business.IdempotencyTTL <= 0 {
		return fmt.Errorf("BUSINESS_IDEMPOTENCY_TTL must be positive")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Location returns the business timezone; "today" is evaluated there.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetPenaltyDailyRate returns the daily penalty rate as decimal
func (c *Config) GetPenaltyDailyRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.PenaltyDailyRatePercent)
	return rate
}

// GetPenaltyCap returns the penalty cap percent as decimal
func (c *Config) GetPenaltyCap() decimal.Decimal {
	capPct, _ := decimal.NewFromString(c.Business.PenaltyCapPercent)
	return capPct
}
