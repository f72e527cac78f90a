// Package daemon wires the layout engine to the X11 backend and runs the
// long-lived process: state restore, IPC server, layouts watcher, and the
// drift reconciler.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/zonetile/zonetile/internal/config"
	"github.com/zonetile/zonetile/internal/engine"
	"github.com/zonetile/zonetile/internal/ipc"
	"github.com/zonetile/zonetile/internal/layout"
	"github.com/zonetile/zonetile/internal/platform"
	"github.com/zonetile/zonetile/internal/store"
)

// Run starts the daemon and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.LogLevel)

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("backend init: %w", err)
	}
	defer backend.Disconnect()

	catalog := layout.NewCatalog(cfg.OverlapTolerance)

	layoutsDir, err := cfg.EffectiveLayoutsDir()
	if err != nil {
		return err
	}
	customs, loadErrs := config.LoadLayoutsDir(layoutsDir)
	for _, lerr := range loadErrs {
		logger.Warn("custom layout skipped", "error", lerr)
	}
	for _, l := range customs {
		if rerr := catalog.Register(l); rerr != nil {
			logger.Warn("custom layout rejected", "layout", l.ID, "error", rerr)
		}
	}

	eng, err := engine.New(backend, catalog, cfg.DefaultLayout, logger)
	if err != nil {
		return err
	}
	eng.SetGap(cfg.GapSize)

	statePath, err := cfg.EffectiveStateFile()
	if err != nil {
		return err
	}
	if snap, lerr := store.Load(statePath); lerr != nil {
		logger.Warn("state load failed, starting empty", "path", statePath, "error", lerr)
	} else if _, rerr := eng.RestoreState(snap); rerr != nil {
		logger.Warn("state restore failed, starting empty", "error", rerr)
	}

	writer := store.NewWriter(statePath, logger)
	defer writer.Close()
	eng.SetPersist(writer.Enqueue)

	reloadChan := make(chan struct{}, 1)
	server, err := ipc.NewServer(eng, backend, reloadChan)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	reloadLayouts := func() {
		customs, loadErrs := config.LoadLayoutsDir(layoutsDir)
		for _, lerr := range loadErrs {
			logger.Warn("custom layout skipped", "error", lerr)
		}
		for _, rerr := range eng.ReloadCustomLayouts(customs) {
			logger.Warn("custom layout rejected", "error", rerr)
		}
	}

	if layoutsDir != "" {
		if werr := watchLayoutsDir(ctx, layoutsDir, reloadLayouts, logger); werr != nil {
			logger.Warn("layouts watcher disabled", "dir", layoutsDir, "error", werr)
		}
	}

	reconciler := NewReconciler(
		time.Duration(cfg.ReconcileIntervalSeconds)*time.Second,
		eng, backend, logger)
	go reconciler.Run(ctx)

	logger.Info("daemon started",
		"default_layout", cfg.DefaultLayout,
		"layouts_dir", layoutsDir,
		"state_file", statePath)

	for {
		select {
		case <-ctx.Done():
			logger.Info("daemon stopping")
			return nil
		case <-reloadChan:
			logger.Info("reload requested")
			reloadLayouts()
		}
	}
}

// newLogger builds the daemon logger. The charmbracelet logger doubles as an
// slog.Handler so the rest of the code depends on *slog.Logger only.
func newLogger(level string) *slog.Logger {
	var lvl charmlog.Level
	switch level {
	case "debug":
		lvl = charmlog.DebugLevel
	case "warning":
		lvl = charmlog.WarnLevel
	case "error":
		lvl = charmlog.ErrorLevel
	default:
		lvl = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           lvl,
	})
	return slog.New(handler)
}
