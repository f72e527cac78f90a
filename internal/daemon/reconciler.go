package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zonetile/zonetile/internal/engine"
	"github.com/zonetile/zonetile/internal/platform"
)

// Reconciler periodically checks for state drift (closed windows, monitor
// hotplug) and feeds the corrections into the engine.
type Reconciler struct {
	interval time.Duration
	eng      *engine.Engine
	backend  platform.Backend
	logger   *slog.Logger

	lastDisplays string
}

// NewReconciler creates a reconciler polling at the given interval.
func NewReconciler(interval time.Duration, eng *engine.Engine, backend platform.Backend, logger *slog.Logger) *Reconciler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		interval: interval,
		eng:      eng,
		backend:  backend,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	windows, err := r.backend.ListWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}
	alive := make(map[platform.WindowID]bool, len(windows))
	for _, w := range windows {
		alive[w.ID] = true
	}

	for _, entry := range r.eng.Assignments() {
		if alive[entry.Window] {
			continue
		}
		r.logger.Info("reconciler: window closed",
			"window", entry.Window,
			"zone", entry.Zone.String())
		r.eng.HandleWindowClosed(entry.Window)
	}

	displays, err := r.backend.Displays()
	if err != nil {
		r.logger.Error("reconciler: failed to list monitors", "error", err)
		return
	}
	sig := displaySignature(displays)
	if r.lastDisplays == "" {
		r.lastDisplays = sig
		return
	}
	if sig == r.lastDisplays {
		return
	}
	r.lastDisplays = sig

	res, err := r.eng.HandleMonitorsChanged(displays)
	if err != nil {
		r.logger.Error("reconciler: monitor change handling failed", "error", err)
		return
	}
	if len(res.Report.Released) > 0 {
		r.logger.Info("reconciler: monitors changed",
			"monitors", len(displays),
			"orphaned", len(res.Report.Released))
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// displaySignature digests the monitor set so hotplug and geometry changes
// are both detected.
func displaySignature(displays []platform.Display) string {
	sig := ""
	for _, d := range displays {
		sig += fmt.Sprintf("%d:%d,%d,%d,%d;", d.ID, d.Bounds.X, d.Bounds.Y, d.Bounds.Width, d.Bounds.Height)
	}
	return sig
}
