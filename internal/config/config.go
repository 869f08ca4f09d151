package config

import (
	"fmt"
	"os"

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/pkg/logging"
)

// Config is the process configuration read from the environment.
type Config struct {
	ServiceName  string
	Env          string
	LogLevel     string
	LogFile      string
	MetricsAddr  string
	OTLPEndpoint string
	StoreName    string
}

func Load() (Config, error) {
	cfg := Config{
		ServiceName:  getenvDefault("SERVICE_NAME", "minishop"),
		Env:          getenvDefault("ENV", "dev"),
		LogLevel:     getenvDefault("LOG_LEVEL", "info"),
		LogFile:      os.Getenv("LOG_FILE"),
		MetricsAddr:  os.Getenv("METRICS_ADDR"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		StoreName:    getenvDefault("STORE_NAME", "Best Buy"),
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// LoggingOptions maps the logging related settings onto logging.Options.
func (c Config) LoggingOptions() logging.Options {
	return logging.Options{
		Service: c.ServiceName,
		Env:     c.Env,
		Level:   c.LogLevel,
		File:    c.LogFile,
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
