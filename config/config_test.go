package config

import (
	"flag"
	"log/slog"
	"strings"
	"testing"
	"time"

	"trivia-match-runtime/storage/gormstore"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://trivia@localhost/trivia")
	t.Setenv("TRIVIA_JWT_SECRET", "s3cret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 5200 {
		t.Fatalf("Port = %d, want 5200", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.SchedulerInterval != 3*time.Second {
		t.Fatalf("SchedulerInterval = %v, want 3s", cfg.SchedulerInterval)
	}
	if cfg.TokenTTL != 50*time.Hour {
		t.Fatalf("TokenTTL = %v, want 50h", cfg.TokenTTL)
	}
	if cfg.Archive.Bucket != "" || cfg.Archive.Prefix != "matches" {
		t.Fatalf("Archive = %+v, want disabled with default prefix", cfg.Archive)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("TRIVIA_PORT", "8080")
	t.Setenv("TRIVIA_ARCHIVE_BUCKET", "results")

	args := []string{"-port", "9090", "-db-driver", "sqlite", "-database-url", "trivia.db", "-seed"}
	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), args)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.DBDriver != "sqlite" || cfg.DatabaseURL != "trivia.db" {
		t.Fatalf("cfg = %+v, want flag values", cfg)
	}
	if !cfg.Seed {
		t.Fatal("Seed = false, want true from -seed")
	}
	if cfg.Archive.Bucket != "results" {
		t.Fatalf("Archive.Bucket = %q, want results", cfg.Archive.Bucket)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing secret", env: map[string]string{"DATABASE_URL": "x"}, want: "TRIVIA_JWT_SECRET"},
		{name: "bad driver", env: map[string]string{"DATABASE_URL": "x", "TRIVIA_JWT_SECRET": "s", "TRIVIA_DB_DRIVER": "mysql"}, want: "unsupported"},
		{name: "half admin", env: map[string]string{"DATABASE_URL": "x", "TRIVIA_JWT_SECRET": "s", "TRIVIA_ADMIN_EMAIL": "a@b.c"}, want: "set together"},
		{name: "bad duration", env: map[string]string{"DATABASE_URL": "x", "TRIVIA_JWT_SECRET": "s", "TRIVIA_SCHEDULER_INTERVAL": "soon"}, want: "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidateAcceptsStoreDrivers(t *testing.T) {
	for _, driver := range []string{gormstore.DriverPostgres, gormstore.DriverSQLite} {
		cfg := Config{DBDriver: driver, DatabaseURL: "x", JWTSecret: "s", SchedulerInterval: time.Second}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate(%s) = %v, want nil", driver, err)
		}
	}
	cfg := Config{DBDriver: "mysql", DatabaseURL: "x", JWTSecret: "s", SchedulerInterval: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate(mysql) = nil, want error")
	}
}

func TestSlogLevelAndOrigins(t *testing.T) {
	cfg := Config{LogLevel: "DEBUG", AllowedOrigins: []string{" http://a ", "", "http://b"}}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
	if got := cfg.CORSOrigins(); got != "http://a,http://b" {
		t.Fatalf("CORSOrigins() = %q, want %q", got, "http://a,http://b")
	}
}
