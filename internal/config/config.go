package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/npu-tools/go-dcmi/pkg/dcmi"
	"github.com/npu-tools/go-dcmi/pkg/dcmi/raw"
)

// Config represents runtime configuration sourced from environment variables.
type Config struct {
	ListenAddr       string        `env:"DCMI_EXPORTER_LISTEN_ADDR" env-default:":8080"`
	LibraryDir       string        `env:"DCMI_EXPORTER_LIB_DIR"`
	Backend          string        `env:"DCMI_EXPORTER_BACKEND" env-default:"dynamic"`
	SampleInterval   time.Duration `env:"DCMI_EXPORTER_SAMPLE_INTERVAL" env-default:"2s"`
	AllowedOrigins   []string      `env:"DCMI_EXPORTER_ALLOWED_ORIGINS" env-default:"*"`
	EnablePrometheus bool          `env:"DCMI_EXPORTER_ENABLE_PROMETHEUS" env-default:"false"`
	EnablePprof      bool          `env:"DCMI_EXPORTER_ENABLE_PPROF" env-default:"false"`
	LogLevel         string        `env:"DCMI_EXPORTER_LOG_LEVEL" env-default:"info"`
	WS               WebsocketConfig
	Health           HealthConfig
}

// WebsocketConfig captures tunables for WebSocket handling.
type WebsocketConfig struct {
	MaxClients   int           `env:"DCMI_EXPORTER_WS_MAX_CLIENTS" env-default:"1024"`
	WriteTimeout time.Duration `env:"DCMI_EXPORTER_WS_WRITE_TIMEOUT" env-default:"3s"`
	ReadTimeout  time.Duration `env:"DCMI_EXPORTER_WS_READ_TIMEOUT" env-default:"30s"`
}

// HealthConfig contains settings for the health watcher feature. MaxFaults
// bounds how many fault codes get their description resolved per scan.
type HealthConfig struct {
	Enable       bool          `env:"DCMI_EXPORTER_HEALTH_ENABLE" env-default:"true"`
	ScanInterval time.Duration `env:"DCMI_EXPORTER_HEALTH_SCAN_INTERVAL" env-default:"10s"`
	MaxFaults    int           `env:"DCMI_EXPORTER_HEALTH_MAX_FAULTS" env-default:"16"`
}

// Load parses configuration from environment variables, applying defaults
// and validating the result. The vendor HW_DCMI_PATH variable is honored as
// a fallback when DCMI_EXPORTER_LIB_DIR is unset.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if strings.TrimSpace(cfg.LibraryDir) == "" {
		if dir := strings.TrimSpace(os.Getenv(raw.EnvLibraryDir)); dir != "" {
			cfg.LibraryDir = dir
		} else {
			cfg.LibraryDir = raw.DefaultLibraryDir
		}
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.AllowedOrigins = origins

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the semantic constraints cleanenv cannot express.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("DCMI_EXPORTER_LISTEN_ADDR must not be empty")
	}
	if _, err := dcmi.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("DCMI_EXPORTER_BACKEND: %w", err)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("DCMI_EXPORTER_SAMPLE_INTERVAL must be > 0")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("DCMI_EXPORTER_ALLOWED_ORIGINS must not be empty")
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("parse DCMI_EXPORTER_LOG_LEVEL: %w", err)
	}
	if c.WS.MaxClients <= 0 {
		return fmt.Errorf("DCMI_EXPORTER_WS_MAX_CLIENTS must be > 0")
	}
	if c.WS.WriteTimeout <= 0 {
		return fmt.Errorf("DCMI_EXPORTER_WS_WRITE_TIMEOUT must be > 0")
	}
	if c.WS.ReadTimeout <= 0 {
		return fmt.Errorf("DCMI_EXPORTER_WS_READ_TIMEOUT must be > 0")
	}
	if c.Health.ScanInterval <= 0 {
		return fmt.Errorf("DCMI_EXPORTER_HEALTH_SCAN_INTERVAL must be > 0")
	}
	if c.Health.MaxFaults <= 0 {
		return fmt.Errorf("DCMI_EXPORTER_HEALTH_MAX_FAULTS must be > 0")
	}
	return nil
}

// SlogLevel returns the parsed log level. Validate guarantees the field
// parses; an unvalidated config falls back to info.
func (c Config) SlogLevel() slog.Level {
	level, err := parseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLogLevel(input string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", input)
	}
}
