package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the environment of the service. The package-level variables below mirror it
// so that packages can read a single setting without passing the whole struct around.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	DatabaseType     string `env:"DATABASE_TYPE" envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"contests"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"contests.db"`

	JWTSecret string `env:"JWT_SECRET"`

	// NotifyRecipientID addresses signup notifications to one user. Zero means every admin.
	NotifyRecipientID uint `env:"NOTIFY_RECIPIENT_ID" envDefault:"0"`

	MailHost     string `env:"MAIL_HOST"`
	MailPort     string `env:"MAIL_PORT" envDefault:"587"`
	MailUsername string `env:"MAIL_USERNAME"`
	MailPassword string `env:"MAIL_PASSWORD"`

	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

var (
	Port    string
	GinMode string

	DatabaseType     string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	SQLitePath       string

	JWTSecret         string
	NotifyRecipientID uint

	MailHost     string
	MailPort     string
	MailUsername string
	MailPassword string

	RateLimit = DefaultRateLimitConfig
)

// LoadConfig reads the optional .env file, parses the environment and publishes the result
// to the package-level variables
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}

	Apply(cfg)
	return cfg, nil
}

// Parse parses the process environment without touching .env or the package variables
func Parse() (Config, error) {
	cfg := Config{RateLimit: DefaultRateLimitConfig}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	switch cfg.DatabaseType {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q (use postgres or sqlite)", cfg.DatabaseType)
	}

	return cfg, nil
}

// Apply publishes cfg to the package-level variables
func Apply(cfg Config) {
	Port = cfg.Port
	GinMode = cfg.GinMode

	DatabaseType = cfg.DatabaseType
	PostgresHost = cfg.PostgresHost
	PostgresPort = cfg.PostgresPort
	PostgresUser = cfg.PostgresUser
	PostgresPassword = cfg.PostgresPassword
	PostgresDB = cfg.PostgresDB
	SQLitePath = cfg.SQLitePath

	JWTSecret = cfg.JWTSecret
	NotifyRecipientID = cfg.NotifyRecipientID

	MailHost = cfg.MailHost
	MailPort = cfg.MailPort
	MailUsername = cfg.MailUsername
	MailPassword = cfg.MailPassword

	RateLimit = cfg.RateLimit
}
