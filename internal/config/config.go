package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration read from the environment
type Config struct {
	Port                 string `env:"PORT" envDefault:"8080"`
	AuctionDurationHours int    `env:"AUCTION_DURATION_HOURS" envDefault:"24"`
	DBPath               string `env:"DB_PATH"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret   string `env:"JWT_SECRET,required,notEmpty"`
	JWTTTLHours int    `env:"JWT_TTL_HOURS" envDefault:"24"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`

	FromName    string        `env:"FROM_NAME" envDefault:"Auction House"`
	FromEmail   string        `env:"FROM_EMAIL" envDefault:"noreply@auction.local"`
	MailTimeout time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	MailWorkers int           `env:"MAIL_WORKERS" envDefault:"8"`

	// AdminEmail, when set, makes sure an admin with this address exists at startup
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
}

// SMTPConfig is the outbound mail server. An empty Host disables SMTP delivery.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// Load parses the environment into a Config and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express
func (c Config) Validate() error {
	if c.AuctionDurationHours <= 0 {
		return fmt.Errorf("AUCTION_DURATION_HOURS must be positive, got %d", c.AuctionDurationHours)
	}
	if c.JWTTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.JWTTTLHours)
	}
	if c.MailWorkers < 1 {
		return fmt.Errorf("MAIL_WORKERS must be at least 1, got %d", c.MailWorkers)
	}
	if c.MailTimeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be positive, got %s", c.MailTimeout)
	}
	return nil
}

// AuctionDuration is the fixed sale window applied to every new item
func (c Config) AuctionDuration() time.Duration {
	return time.Duration(c.AuctionDurationHours) * time.Hour
}

// TokenTTL is the lifetime of issued bearer tokens
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	return ":" + c.Port
}
