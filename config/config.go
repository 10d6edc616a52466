// Package config loads the server configuration from the environment, an
// optional .env file and command line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"trivia-match-runtime/storage/gormstore"
)

// Config holds the server configuration.
type Config struct {
	Port              int           `env:"TRIVIA_PORT" envDefault:"5200"`
	DBDriver          string        `env:"TRIVIA_DB_DRIVER" envDefault:"postgres"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	SchedulerInterval time.Duration `env:"TRIVIA_SCHEDULER_INTERVAL" envDefault:"3s"`
	ShutdownTimeout   time.Duration `env:"TRIVIA_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	JWTSecret         string        `env:"TRIVIA_JWT_SECRET"`
	TokenTTL          time.Duration `env:"TRIVIA_TOKEN_TTL" envDefault:"50h"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	LogLevel          string        `env:"TRIVIA_LOG_LEVEL" envDefault:"info"`
	AdminEmail        string        `env:"TRIVIA_ADMIN_EMAIL"`
	AdminPassword     string        `env:"TRIVIA_ADMIN_PASSWORD"`
	Seed              bool          `env:"TRIVIA_SEED"`
	Archive           ArchiveConfig `envPrefix:"TRIVIA_ARCHIVE_"`
}

// ArchiveConfig enables uploading ended match results to an S3 compatible
// bucket. Archiving is off when Bucket is empty.
type ArchiveConfig struct {
	Bucket          string `env:"BUCKET"`
	Prefix          string `env:"PREFIX" envDefault:"matches"`
	Endpoint        string `env:"ENDPOINT"`
	Region          string `env:"REGION" envDefault:"auto"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
}

// Load reads .env (when present), the environment and then flags from args.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "Database driver: "+gormstore.DriverPostgres+" or "+gormstore.DriverSQLite)
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Database DSN (postgres URL or sqlite file path)")
	fs.DurationVar(&cfg.SchedulerInterval, "scheduler-interval", cfg.SchedulerInterval, "Match scheduler poll interval")
	fs.BoolVar(&cfg.Seed, "seed", cfg.Seed, "Load demo users, questions and a match at startup")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !gormstore.ValidDriver(c.DBDriver) {
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("TRIVIA_JWT_SECRET is required")
	}
	if c.SchedulerInterval <= 0 {
		return errors.New("scheduler interval must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("TRIVIA_ADMIN_EMAIL and TRIVIA_ADMIN_PASSWORD must be set together")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CORSOrigins returns the allowed origins joined the way fiber's cors
// middleware expects them.
func (c Config) CORSOrigins() string {
	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return strings.Join(origins, ",")
}
