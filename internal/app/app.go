// Package app wires up and runs the exporter services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/npu-tools/go-dcmi/internal/config"
	"github.com/npu-tools/go-dcmi/internal/healthwatch"
	"github.com/npu-tools/go-dcmi/internal/httpserver"
	"github.com/npu-tools/go-dcmi/internal/inventory"
	"github.com/npu-tools/go-dcmi/internal/telemetry"
	"github.com/npu-tools/go-dcmi/pkg/dcmi"
)

const shutdownTimeout = 10 * time.Second

// Run bootstraps the application lifecycle.
func Run(ctx context.Context, baseLogger *slog.Logger, cfg config.Config) error {
	appLogger := baseLogger.With("component", "app")

	backend, err := dcmi.ParseBackend(cfg.Backend)
	if err != nil {
		return fmt.Errorf("parse backend: %w", err)
	}

	session, err := dcmi.New(
		dcmi.WithBackend(backend),
		dcmi.WithLibraryDir(cfg.LibraryDir),
	)
	if err != nil {
		return fmt.Errorf("open dcmi session: %w", err)
	}

	devices, err := inventory.Discover(session, baseLogger.With("component", "inventory"))
	if err != nil {
		return fmt.Errorf("discover devices: %w", err)
	}
	appLogger.Info("discovered devices", "count", len(devices))

	readers := make(map[string]*telemetry.Reader, len(devices))
	for _, dev := range devices {
		if !dev.IsNPU() {
			continue
		}
		readerLogger := baseLogger.With("component", "telemetry_reader", "device_id", dev.ID)
		chip := session.CardByID(dev.CardID).ChipByID(dev.ChipID)
		readers[dev.ID] = telemetry.NewReader(dev.ID, chip, readerLogger)
	}

	if len(devices) > 0 && len(readers) == 0 {
		appLogger.Warn("no metrics readers initialised", "reason", "no NPU chips discovered")
	}

	telemetryManager, err := telemetry.NewManager(cfg.SampleInterval, readers, baseLogger.With("component", "telemetry"))
	if err != nil {
		return fmt.Errorf("init telemetry manager: %w", err)
	}
	defer func() {
		if err := telemetryManager.Close(); err != nil {
			appLogger.Warn("telemetry manager close", "err", err)
		}
	}()

	var (
		healthManager *healthwatch.Manager
	)

	if cfg.Health.Enable {
		healthLogger := baseLogger.With("component", "healthwatch")
		healthManager, err = healthwatch.NewManager(cfg.Health, session, devices, healthLogger)
		if err != nil {
			return fmt.Errorf("init health watcher: %w", err)
		}
		defer func() {
			if err := healthManager.Close(); err != nil {
				appLogger.Warn("health manager close", "err", err)
			}
		}()
	}

	telemetryCtx, telemetryCancel := context.WithCancel(ctx)
	defer telemetryCancel()

	telemetryErrCh := make(chan error, 1)
	go func() {
		telemetryErrCh <- telemetryManager.Run(telemetryCtx)
	}()

	var (
		healthCtx    context.Context
		healthCancel context.CancelFunc
		healthErrCh  chan error
	)

	if healthManager != nil {
		healthCtx, healthCancel = context.WithCancel(ctx)
		healthErrCh = make(chan error, 1)
		go func() {
			healthErrCh <- healthManager.Run(healthCtx)
		}()
		defer healthCancel()
	}

	srv := httpserver.New(cfg, baseLogger.With("component", "http"), devices, telemetryManager, healthManager)

	appLogger.Info("starting HTTP server", "listen_addr", cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	for {
		select {
		case err := <-errCh:
			telemetryCancel()
			if healthCancel != nil {
				healthCancel()
			}
			if err != nil {
				return err
			}
			if telemetryErrCh != nil {
				if telemetryErr := <-telemetryErrCh; telemetryErr != nil && !errors.Is(telemetryErr, context.Canceled) {
					return telemetryErr
				}
			}
			if healthErrCh != nil {
				if healthErr := <-healthErrCh; healthErr != nil && !errors.Is(healthErr, context.Canceled) {
					return healthErr
				}
			}
			return nil
		case err := <-telemetryErrCh:
			telemetryErrCh = nil
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case err := <-healthErrCh:
			healthErrCh = nil
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case <-ctx.Done():
			appLogger.Info("shutdown initiated", "reason", ctx.Err())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("http shutdown: %w", err)
			}

			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			telemetryCancel()
			if healthCancel != nil {
				healthCancel()
			}
			if telemetryErrCh != nil {
				if telemetryErr := <-telemetryErrCh; telemetryErr != nil && !errors.Is(telemetryErr, context.Canceled) {
					return telemetryErr
				}
			}
			if healthErrCh != nil {
				if healthErr := <-healthErrCh; healthErr != nil && !errors.Is(healthErr, context.Canceled) {
					return healthErr
				}
			}

			appLogger.Info("shutdown complete")
			return nil
		}
	}
}
