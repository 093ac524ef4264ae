package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Runtime - process settings taken from the environment.
type Runtime struct {
	LogLevel  string `env:"RELAY_LOG_LEVEL" default:"info"`
	LogFormat string `env:"RELAY_LOG_FORMAT" default:"text"`
	// MetricsAddr - listen address of ops HTTP endpoint, empty disables it.
	MetricsAddr string `env:"RELAY_METRICS_ADDR"`
}

// LoadRuntime - loads .env file if any, then environment variables.
func LoadRuntime() (*Runtime, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var rt Runtime
	if err := env.Load(&rt, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := validate(&rt); err != nil {
		return nil, err
	}
	return &rt, nil
}

func validate(rt *Runtime) error {
	switch rt.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("RELAY_LOG_LEVEL must be one of debug, info, warn, error, got %q", rt.LogLevel)
	}
	switch rt.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("RELAY_LOG_FORMAT must be text or json, got %q", rt.LogFormat)
	}
	return nil
}
