package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HW_DCMI_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected ListenAddr %q", cfg.ListenAddr)
	}
	if cfg.LibraryDir != "/usr/local/dcmi" {
		t.Fatalf("unexpected LibraryDir %q", cfg.LibraryDir)
	}
	if cfg.Backend != "dynamic" {
		t.Fatalf("unexpected Backend %q", cfg.Backend)
	}
	if cfg.SampleInterval != 2*time.Second {
		t.Fatalf("unexpected SampleInterval %s", cfg.SampleInterval)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Fatalf("unexpected AllowedOrigins %+v", cfg.AllowedOrigins)
	}
	if cfg.EnablePrometheus || cfg.EnablePprof {
		t.Fatalf("prometheus/pprof unexpectedly enabled by default")
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("unexpected log level %v", cfg.SlogLevel())
	}
	if cfg.WS.MaxClients != 1024 {
		t.Fatalf("unexpected WS.MaxClients %d", cfg.WS.MaxClients)
	}
	if !cfg.Health.Enable {
		t.Fatalf("expected health watcher enabled by default")
	}
	if cfg.Health.ScanInterval != 10*time.Second {
		t.Fatalf("unexpected Health.ScanInterval %s", cfg.Health.ScanInterval)
	}
	if cfg.Health.MaxFaults != 16 {
		t.Fatalf("unexpected Health.MaxFaults %d", cfg.Health.MaxFaults)
	}
}

func TestLoadLibraryDirFallback(t *testing.T) {
	t.Setenv("HW_DCMI_PATH", "/opt/dcmi")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LibraryDir != "/opt/dcmi" {
		t.Fatalf("expected HW_DCMI_PATH fallback, got %q", cfg.LibraryDir)
	}

	t.Setenv("DCMI_EXPORTER_LIB_DIR", "/srv/dcmi")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LibraryDir != "/srv/dcmi" {
		t.Fatalf("expected DCMI_EXPORTER_LIB_DIR to win, got %q", cfg.LibraryDir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DCMI_EXPORTER_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("DCMI_EXPORTER_BACKEND", "linked")
	t.Setenv("DCMI_EXPORTER_SAMPLE_INTERVAL", "500ms")
	t.Setenv("DCMI_EXPORTER_ALLOWED_ORIGINS", "https://example.com, https://other.test")
	t.Setenv("DCMI_EXPORTER_ENABLE_PROMETHEUS", "true")
	t.Setenv("DCMI_EXPORTER_ENABLE_PPROF", "true")
	t.Setenv("DCMI_EXPORTER_LOG_LEVEL", "debug")
	t.Setenv("DCMI_EXPORTER_WS_MAX_CLIENTS", "2048")
	t.Setenv("DCMI_EXPORTER_WS_WRITE_TIMEOUT", "10s")
	t.Setenv("DCMI_EXPORTER_WS_READ_TIMEOUT", "45s")
	t.Setenv("DCMI_EXPORTER_HEALTH_ENABLE", "false")
	t.Setenv("DCMI_EXPORTER_HEALTH_SCAN_INTERVAL", "5s")
	t.Setenv("DCMI_EXPORTER_HEALTH_MAX_FAULTS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Fatalf("ListenAddr override failed, got %q", cfg.ListenAddr)
	}
	if cfg.Backend != "linked" {
		t.Fatalf("Backend override failed, got %q", cfg.Backend)
	}
	if cfg.SampleInterval != 500*time.Millisecond {
		t.Fatalf("SampleInterval override failed, got %s", cfg.SampleInterval)
	}
	wantOrigins := []string{"https://example.com", "https://other.test"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, wantOrigins) {
		t.Fatalf("AllowedOrigins mismatch: %+v", cfg.AllowedOrigins)
	}
	if !cfg.EnablePrometheus {
		t.Fatalf("EnablePrometheus override failed")
	}
	if !cfg.EnablePprof {
		t.Fatalf("EnablePprof override failed")
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("LogLevel override failed, got %v", cfg.SlogLevel())
	}
	if cfg.WS.MaxClients != 2048 {
		t.Fatalf("WS.MaxClients override failed, got %d", cfg.WS.MaxClients)
	}
	if cfg.WS.WriteTimeout != 10*time.Second {
		t.Fatalf("WS.WriteTimeout override failed, got %s", cfg.WS.WriteTimeout)
	}
	if cfg.WS.ReadTimeout != 45*time.Second {
		t.Fatalf("WS.ReadTimeout override failed, got %s", cfg.WS.ReadTimeout)
	}
	if cfg.Health.Enable {
		t.Fatalf("Health.Enable override failed, expected false")
	}
	if cfg.Health.ScanInterval != 5*time.Second {
		t.Fatalf("Health.ScanInterval override failed, got %s", cfg.Health.ScanInterval)
	}
	if cfg.Health.MaxFaults != 4 {
		t.Fatalf("Health.MaxFaults override failed, got %d", cfg.Health.MaxFaults)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{"EmptyListenAddr", "DCMI_EXPORTER_LISTEN_ADDR", "   "},
		{"UnknownBackend", "DCMI_EXPORTER_BACKEND", "static"},
		{"InvalidSampleInterval", "DCMI_EXPORTER_SAMPLE_INTERVAL", "fast"},
		{"NegativeSampleInterval", "DCMI_EXPORTER_SAMPLE_INTERVAL", "-1s"},
		{"InvalidOrigins", "DCMI_EXPORTER_ALLOWED_ORIGINS", ","},
		{"InvalidPrometheusBool", "DCMI_EXPORTER_ENABLE_PROMETHEUS", "maybe"},
		{"InvalidLogLevel", "DCMI_EXPORTER_LOG_LEVEL", "loud"},
		{"InvalidWSMaxClients", "DCMI_EXPORTER_WS_MAX_CLIENTS", "zero"},
		{"NonPositiveWSMaxClients", "DCMI_EXPORTER_WS_MAX_CLIENTS", "0"},
		{"InvalidWSWriteTimeout", "DCMI_EXPORTER_WS_WRITE_TIMEOUT", "nope"},
		{"NegativeWSWriteTimeout", "DCMI_EXPORTER_WS_WRITE_TIMEOUT", "-1s"},
		{"InvalidHealthEnable", "DCMI_EXPORTER_HEALTH_ENABLE", "maybe"},
		{"InvalidHealthInterval", "DCMI_EXPORTER_HEALTH_SCAN_INTERVAL", "soon"},
		{"NonPositiveHealthInterval", "DCMI_EXPORTER_HEALTH_SCAN_INTERVAL", "0"},
		{"InvalidHealthMaxFaults", "DCMI_EXPORTER_HEALTH_MAX_FAULTS", "lots"},
		{"NonPositiveHealthMaxFaults", "DCMI_EXPORTER_HEALTH_MAX_FAULTS", "-1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.val)
			}
		})
	}
}
