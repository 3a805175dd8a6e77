package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "MEETINGS_"

// Store drivers accepted in MEETINGS_STORE_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Config captures environment driven configuration for meetingd and meetingctl.
type Config struct {
	HTTPPort          int           `env:"HTTP_PORT" envDefault:"8080" validate:"min=1,max=65535"`
	StoreDriver       string        `env:"STORE_DRIVER" envDefault:"sqlite" validate:"oneof=sqlite badger memory"`
	SQLitePath        string        `env:"SQLITE_PATH" envDefault:"meetings.db" validate:"required_if=StoreDriver sqlite"`
	SQLiteBusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	BadgerDir         string        `env:"BADGER_DIR" envDefault:"data/badger" validate:"required_if=StoreDriver badger"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	TxMaxRetries      uint          `env:"TX_MAX_RETRIES" envDefault:"8" validate:"min=1,max=50"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	OTelEndpoint      string        `env:"OTEL_ENDPOINT"`
	OTelServiceName   string        `env:"OTEL_SERVICE_NAME" envDefault:"meetingd" validate:"required"`
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Load reads the process environment, filling gaps from ./.env when present.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads the process environment, filling gaps from the dotenv file at
// path. A missing file is not an error. Variables already set in the
// environment win over the file.
func LoadFile(path string) (Config, error) {
	environ := env.ToMap(os.Environ())
	if path != "" {
		fileVars, err := godotenv.Read(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		default:
			for key, value := range fileVars {
				if _, set := environ[key]; !set {
					environ[key] = value
				}
			}
		}
	}
	return Parse(environ)
}

// Parse builds a Config from an explicit variable map. Every malformed or
// out-of-range variable is reported in a single error.
func Parse(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix:      Prefix,
		Environment: environ,
	})
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := validator.New().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Config{}, err
		}
		invalid := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			invalid = append(invalid, variableName(fe.StructField()))
		}
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

func variableName(field string) string {
	names := map[string]string{
		"HTTPPort":          "HTTP_PORT",
		"StoreDriver":       "STORE_DRIVER",
		"SQLitePath":        "SQLITE_PATH",
		"SQLiteBusyTimeout": "SQLITE_BUSY_TIMEOUT",
		"BadgerDir":         "BADGER_DIR",
		"LogLevel":          "LOG_LEVEL",
		"LogFormat":         "LOG_FORMAT",
		"TxMaxRetries":      "TX_MAX_RETRIES",
		"ShutdownTimeout":   "SHUTDOWN_TIMEOUT",
		"OTelServiceName":   "OTEL_SERVICE_NAME",
	}
	if name, ok := names[field]; ok {
		return Prefix + name
	}
	return field
}
