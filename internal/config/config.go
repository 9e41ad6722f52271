package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Log      LogConfig      `envPrefix:"LOG_"`
	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`
	Admin    AdminConfig    `envPrefix:"ADMIN_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Pricing  PricingConfig  `envPrefix:"PRICING_"`

	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ReportsDir         string        `env:"REPORTS_DIR" envDefault:"reports"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RateLimit       int64         `env:"RATE_LIMIT" envDefault:"60"`
	RateWindow      time.Duration `env:"RATE_WINDOW" envDefault:"1m"`

	// Admin endpoints answer 403 while the token is empty.
	AdminToken string `env:"ADMIN_TOKEN"`
}

type TelegramConfig struct {
	// Bot is disabled when the token is empty.
	Token      string        `env:"TOKEN"`
	Debug      bool          `env:"DEBUG" envDefault:"false"`
	RateLimit  int64         `env:"RATE_LIMIT" envDefault:"30"`
	RateWindow time.Duration `env:"RATE_WINDOW" envDefault:"1h"`
}

type AdminConfig struct {
	IDs       []int64 `env:"IDS" envSeparator:","`
	ChannelID int64   `env:"CHANNEL_ID"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"24h"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME" envDefault:"tintas"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"2m"`
}

// PricingConfig holds the defaults applied when a request leaves a field out.
type PricingConfig struct {
	DefaultCoverage float64   `env:"DEFAULT_COVERAGE" envDefault:"12"`
	DefaultCoats    int       `env:"DEFAULT_COATS" envDefault:"2"`
	DefaultWaste    float64   `env:"DEFAULT_WASTE" envDefault:"0.10"`
	PackageSizes    []float64 `env:"PACKAGE_SIZES" envSeparator:"," envDefault:"0.9,3.6,18"`
	AuxiliaryRate   float64   `env:"AUXILIARY_RATE" envDefault:"0.15"`
	LaborPerM2      float64   `env:"LABOR_PER_M2" envDefault:"8"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Pricing.DefaultCoverage <= 0 {
		return fmt.Errorf("PRICING_DEFAULT_COVERAGE must be positive, got %v", c.Pricing.DefaultCoverage)
	}
	if c.Pricing.DefaultCoats < 1 {
		return fmt.Errorf("PRICING_DEFAULT_COATS must be at least 1, got %d", c.Pricing.DefaultCoats)
	}
	if c.Pricing.DefaultWaste < 0 {
		return fmt.Errorf("PRICING_DEFAULT_WASTE must not be negative, got %v", c.Pricing.DefaultWaste)
	}
	for _, size := range c.Pricing.PackageSizes {
		if size <= 0 {
			return fmt.Errorf("PRICING_PACKAGE_SIZES must be positive, got %v", size)
		}
	}
	// Telegram notifications need somewhere to go.
	if c.Telegram.Token != "" && len(c.Admin.IDs) == 0 {
		return fmt.Errorf("at least one admin ID is required when the bot is enabled")
	}
	return nil
}
