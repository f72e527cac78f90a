// Package engine is the layout manager facade. It owns the layout catalog,
// the assignment table, and the per-monitor active layout selection, and it
// composes geometry resolution with state mutations on behalf of the IPC
// server, the reconciler, and the MCP tools.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/zonetile/zonetile/internal/conflict"
	"github.com/zonetile/zonetile/internal/geometry"
	"github.com/zonetile/zonetile/internal/layout"
	"github.com/zonetile/zonetile/internal/platform"
	"github.com/zonetile/zonetile/internal/state"
	"github.com/zonetile/zonetile/internal/zone"
)

// Direction selects the cycling direction through a layout's zones.
type Direction int

const (
	Next Direction = iota
	Previous
)

// Move is one geometry application the backend performed (or was asked to
// perform) as part of an operation.
type Move struct {
	Window platform.WindowID
	Zone   zone.Ref
	Target geometry.Rect
}

// Result describes the outcome of a mutating operation: the primary window's
// new zone and rectangle, any additional windows moved (swaps, remaps), and
// the conflict report.
type Result struct {
	Window platform.WindowID
	Zone   zone.Ref
	Target geometry.Rect
	Moves  []Move
	Report conflict.Report
}

// PersistFunc receives a snapshot after every successful mutation. It must
// not block; the store queues writes with last-write-wins semantics.
type PersistFunc func(state.Snapshot)

// Engine is a single explicit instance constructed once per process and
// passed to all callers; there are no package-level singletons.
//
// Operations are serialized by an internal mutex and run to completion
// without suspension. Callers must not re-enter the engine from within a
// callback the engine invokes synchronously.
type Engine struct {
	mu      sync.Mutex
	backend platform.Backend
	catalog *layout.Catalog
	table   *state.Table
	active  map[int]string // monitor id -> active layout id
	def     string         // default layout id for monitors with no selection
	persist PersistFunc
	gap     int // pixel margin around placed windows
	log     *slog.Logger
}

// New constructs an engine. defaultLayout must exist in the catalog.
func New(backend platform.Backend, catalog *layout.Catalog, defaultLayout string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !catalog.Has(defaultLayout) {
		return nil, fmt.Errorf("default layout %q: %w", defaultLayout, zone.ErrNotFound)
	}
	return &Engine{
		backend: backend,
		catalog: catalog,
		table:   state.NewTable(),
		active:  make(map[int]string),
		def:     defaultLayout,
		log:     logger,
	}, nil
}

// SetPersist installs the persistence sink invoked after every successful
// mutation.
func (e *Engine) SetPersist(fn PersistFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.persist = fn
}

// SetGap sets the pixel margin applied around windows when they are placed.
// Zone boundaries and the Zones listing stay gap-less.
func (e *Engine) SetGap(px int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if px < 0 {
		px = 0
	}
	e.gap = px
}

// Catalog exposes the layout catalog for read-only callers (IPC listings).
func (e *Engine) Catalog() *layout.Catalog {
	return e.catalog
}

// DefaultLayout returns the layout id used by monitors with no selection.
func (e *Engine) DefaultLayout() string {
	return e.def
}

// ActiveLayout returns the active layout id for a monitor.
func (e *Engine) ActiveLayout(monitorID int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeLayoutLocked(monitorID)
}

func (e *Engine) activeLayoutLocked(monitorID int) string {
	if id, ok := e.active[monitorID]; ok {
		return id
	}
	return e.def
}

// AssignWindowToZone assigns a window to the given zone index of the active
// layout on the currently active monitor. An occupied target zone fails with
// ErrConflict unless directive authorizes an eviction.
func (e *Engine) AssignWindowToZone(win platform.WindowID, zoneIndex int, directive conflict.Directive) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	display, err := e.backend.ActiveDisplay()
	if err != nil {
		return Result{}, fmt.Errorf("active monitor: %w", err)
	}
	return e.assignLocked(win, display, zoneIndex, directive)
}

// AssignWindowToZoneOnMonitor is AssignWindowToZone targeting an explicit
// monitor rather than the active one.
func (e *Engine) AssignWindowToZoneOnMonitor(win platform.WindowID, monitorID, zoneIndex int, directive conflict.Directive) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	display, err := e.displayByID(monitorID)
	if err != nil {
		return Result{}, err
	}
	return e.assignLocked(win, display, zoneIndex, directive)
}

func (e *Engine) assignLocked(win platform.WindowID, display platform.Display, zoneIndex int, directive conflict.Directive) (Result, error) {
	layoutID := e.activeLayoutLocked(display.ID)
	l, err := e.catalog.Get(layoutID)
	if err != nil {
		return Result{}, err
	}
	pos := l.ZonePos(zoneIndex)
	if pos < 0 {
		return Result{}, fmt.Errorf("zone %d in layout %q: %w", zoneIndex, layoutID, zone.ErrNotFound)
	}

	target := zone.Ref{Monitor: display.ID, Layout: layoutID, Index: zoneIndex}
	prev, hadPrev := e.table.LookupByWindow(win)

	report, err := conflict.Resolve(e.table, conflict.Event{
		Kind:      conflict.ZoneOccupied,
		Window:    win,
		Target:    target,
		Directive: directive,
	})
	if err != nil {
		return Result{}, err
	}

	rects := l.Resolve(display.Usable)
	res := Result{
		Window: win,
		Zone:   target,
		Target: rects[pos],
		Report: report,
	}
	res.Moves = append(res.Moves, Move{Window: win, Zone: target, Target: rects[pos]})

	// A swap also moves the previous occupant into the mover's old zone.
	for _, rm := range report.Remapped {
		if hadPrev && rm.To == prev {
			if rect, ok := e.resolveRefLocked(rm.To, display); ok {
				res.Moves = append(res.Moves, Move{Window: rm.Window, Zone: rm.To, Target: rect})
			}
		}
	}

	e.applyLocked(res.Moves)
	e.persistLocked()
	return res, nil
}

// CycleZone moves a window to the next or previous zone of its layout, in
// zone-index order with wraparound. An unassigned window is assigned to the
// first zone of the active monitor's layout instead of failing.
func (e *Engine) CycleZone(win platform.WindowID, dir Direction, directive conflict.Directive) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ref, assigned := e.table.LookupByWindow(win)
	if !assigned {
		display, err := e.backend.ActiveDisplay()
		if err != nil {
			return Result{}, fmt.Errorf("active monitor: %w", err)
		}
		l, err := e.catalog.Get(e.activeLayoutLocked(display.ID))
		if err != nil {
			return Result{}, err
		}
		return e.assignLocked(win, display, l.Zones[0].Index, directive)
	}

	display, err := e.displayByID(ref.Monitor)
	if err != nil {
		return Result{}, err
	}
	l, err := e.catalog.Get(ref.Layout)
	if err != nil {
		return Result{}, err
	}
	pos := l.ZonePos(ref.Index)
	if pos < 0 {
		return Result{}, fmt.Errorf("zone %d in layout %q: %w", ref.Index, ref.Layout, zone.ErrNotFound)
	}

	n := len(l.Zones)
	switch dir {
	case Next:
		pos = (pos + 1) % n
	case Previous:
		pos = (pos - 1 + n) % n
	default:
		return Result{}, fmt.Errorf("unknown direction %d", int(dir))
	}

	return e.assignLocked(win, display, l.Zones[pos].Index, directive)
}

// SwitchLayout changes the active layout on a monitor and remaps existing
// assignments by largest positional overlap. Remapped windows have their new
// geometry applied; dropped windows become floating and are reported.
func (e *Engine) SwitchLayout(monitorID int, layoutID string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	display, err := e.displayByID(monitorID)
	if err != nil {
		return Result{}, err
	}
	newLayout, err := e.catalog.Get(layoutID)
	if err != nil {
		return Result{}, err
	}

	oldID := e.activeLayoutLocked(monitorID)
	res := Result{Zone: zone.Ref{Monitor: monitorID, Layout: layoutID}}

	if oldID != layoutID {
		oldLayout, err := e.catalog.Get(oldID)
		if err == nil {
			report, rerr := conflict.Resolve(e.table, conflict.Event{
				Kind:        conflict.LayoutSwitched,
				Monitor:     monitorID,
				OldLayout:   oldLayout,
				NewLayout:   newLayout,
				MonitorRect: display.Usable,
			})
			if rerr != nil {
				return Result{}, rerr
			}
			res.Report = report
		}
	}

	e.active[monitorID] = layoutID

	newRects := newLayout.Resolve(display.Usable)
	for _, rm := range res.Report.Remapped {
		pos := newLayout.ZonePos(rm.To.Index)
		if pos < 0 {
			continue
		}
		res.Moves = append(res.Moves, Move{Window: rm.Window, Zone: rm.To, Target: newRects[pos]})
	}

	e.applyLocked(res.Moves)
	e.persistLocked()
	return res, nil
}

// HandleMonitorsChanged reconciles the table against a fresh monitor
// snapshot. Assignments referencing vanished monitors are released and the
// orphaned windows reported; the engine never re-tiles them on its own.
func (e *Engine) HandleMonitorsChanged(displays []platform.Display) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	present := make(map[int]bool, len(displays))
	for _, d := range displays {
		present[d.ID] = true
	}

	referenced := make(map[int]bool)
	for _, entry := range e.table.Entries() {
		referenced[entry.Zone.Monitor] = true
	}

	var res Result
	changed := false
	for monitorID := range referenced {
		if present[monitorID] {
			continue
		}
		report, err := conflict.Resolve(e.table, conflict.Event{
			Kind:    conflict.MonitorRemoved,
			Monitor: monitorID,
		})
		if err != nil {
			return Result{}, err
		}
		res.Report.Released = append(res.Report.Released, report.Released...)
		changed = true
	}

	// Drop layout selections for monitors that no longer exist.
	for monitorID := range e.active {
		if !present[monitorID] {
			delete(e.active, monitorID)
		}
	}

	if changed {
		e.log.Info("monitors changed", "orphaned", len(res.Report.Released))
		e.persistLocked()
	}
	return res, nil
}

// HandleWindowClosed releases the closed window's assignment.
func (e *Engine) HandleWindowClosed(win platform.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, assigned := e.table.LookupByWindow(win); !assigned {
		return
	}
	_, _ = conflict.Resolve(e.table, conflict.Event{Kind: conflict.WindowClosed, Window: win})
	e.persistLocked()
}

// ReleaseWindow removes a window's assignment, making it floating. No-op for
// unassigned windows.
func (e *Engine) ReleaseWindow(win platform.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.table.Release(win); ok {
		e.persistLocked()
	}
}

// LookupWindow returns a window's current zone, if any.
func (e *Engine) LookupWindow(win platform.WindowID) (zone.Ref, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.LookupByWindow(win)
}

// Assignments returns the current assignment entries.
func (e *Engine) Assignments() []state.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.Entries()
}

// Zones returns the active layout id and resolved zone rectangles for a
// monitor, in zone order.
func (e *Engine) Zones(monitorID int) (string, []geometry.Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	display, err := e.displayByID(monitorID)
	if err != nil {
		return "", nil, err
	}
	layoutID := e.activeLayoutLocked(monitorID)
	l, err := e.catalog.Get(layoutID)
	if err != nil {
		return "", nil, err
	}
	return layoutID, l.Resolve(display.Usable), nil
}

func (e *Engine) displayByID(monitorID int) (platform.Display, error) {
	displays, err := e.backend.Displays()
	if err != nil {
		return platform.Display{}, fmt.Errorf("monitor snapshot: %w", err)
	}
	for _, d := range displays {
		if d.ID == monitorID {
			return d, nil
		}
	}
	return platform.Display{}, fmt.Errorf("monitor %d: %w", monitorID, zone.ErrNotFound)
}

// resolveRefLocked computes the absolute rectangle for a zone ref. hint, if
// it matches the ref's monitor, avoids a second monitor snapshot.
func (e *Engine) resolveRefLocked(ref zone.Ref, hint platform.Display) (geometry.Rect, bool) {
	display := hint
	if display.ID != ref.Monitor {
		d, err := e.displayByID(ref.Monitor)
		if err != nil {
			return geometry.Rect{}, false
		}
		display = d
	}
	l, err := e.catalog.Get(ref.Layout)
	if err != nil {
		return geometry.Rect{}, false
	}
	pos := l.ZonePos(ref.Index)
	if pos < 0 {
		return geometry.Rect{}, false
	}
	return l.Resolve(display.Usable)[pos], true
}

// applyLocked pushes geometry to the backend. Apply failures are logged, not
// returned: the assignment table is authoritative and the backend call is
// fire-and-forget from the engine's perspective.
func (e *Engine) applyLocked(moves []Move) {
	for _, m := range moves {
		if err := e.backend.MoveResize(m.Window, m.Target.Inset(e.gap)); err != nil {
			e.log.Warn("move-resize failed", "window", m.Window, "zone", m.Zone.String(), "error", err)
		}
	}
}

// persistLocked emits a snapshot to the persistence sink. Windows that
// vanished since the mutation are skipped by the describe lookup.
func (e *Engine) persistLocked() {
	if e.persist == nil {
		return
	}
	windows, err := e.backend.ListWindows()
	if err != nil {
		e.log.Warn("snapshot skipped, window list failed", "error", err)
		return
	}
	byID := make(map[platform.WindowID]platform.Window, len(windows))
	for _, w := range windows {
		byID[w.ID] = w
	}
	snap := e.table.Snapshot(func(id platform.WindowID) (state.WindowKey, bool) {
		w, ok := byID[id]
		if !ok {
			return state.WindowKey{}, false
		}
		return state.WindowKey{Class: w.Class, Title: w.Title, Desktop: w.Desktop}, true
	})
	e.persist(snap)
}

// RestoreState rebuilds the assignment table from a persisted snapshot,
// re-resolving window proxies against the live window list. Entries that no
// longer resolve are dropped; restore never fails.
func (e *Engine) RestoreState(snap state.Snapshot) (state.RestoreStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	windows, err := e.backend.ListWindows()
	if err != nil {
		return state.RestoreStats{}, fmt.Errorf("window list: %w", err)
	}

	claimed := make(map[platform.WindowID]bool)
	resolve := func(key state.WindowKey) (platform.WindowID, bool) {
		for _, w := range windows {
			if claimed[w.ID] {
				continue
			}
			if w.Class == key.Class && w.Title == key.Title && w.Desktop == key.Desktop {
				claimed[w.ID] = true
				return w.ID, true
			}
		}
		return 0, false
	}

	stats := e.table.Restore(snap, resolve, e.catalog.HasZone)

	// The snapshot does not record per-monitor layout selections, so seed
	// them from the restored assignments; otherwise the first cycle after a
	// restart would re-target the default layout. Ties go to the layout
	// holding the most windows on the monitor, then to the smaller id.
	counts := make(map[int]map[string]int)
	for _, entry := range e.table.Entries() {
		byLayout := counts[entry.Zone.Monitor]
		if byLayout == nil {
			byLayout = make(map[string]int)
			counts[entry.Zone.Monitor] = byLayout
		}
		byLayout[entry.Zone.Layout]++
	}
	for monitor, byLayout := range counts {
		best := ""
		for id, n := range byLayout {
			if best == "" || n > byLayout[best] || (n == byLayout[best] && id < best) {
				best = id
			}
		}
		e.active[monitor] = best
	}

	e.log.Info("state restored",
		"restored", stats.Restored,
		"dropped_windows", stats.DroppedWindows,
		"dropped_layouts", stats.DroppedLayouts,
		"dropped_dups", stats.DroppedDups)
	return stats, nil
}

// ReloadCustomLayouts replaces the catalog's custom layout set. Layouts in
// next are registered (same id overwrites); custom layouts absent from next
// are removed, and assignments referencing a removed or reshaped layout are
// released.
func (e *Engine) ReloadCustomLayouts(next []layout.Layout) []error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	keep := make(map[string]bool, len(next))
	for _, l := range next {
		if err := e.catalog.Register(l); err != nil {
			errs = append(errs, err)
			continue
		}
		keep[l.ID] = true
	}

	changed := false
	for _, id := range e.catalog.CustomIDs() {
		if keep[id] {
			continue
		}
		if err := e.catalog.Remove(id); err != nil {
			errs = append(errs, err)
			continue
		}
		if released := e.table.ReleaseLayoutEverywhere(id); len(released) > 0 {
			e.log.Info("layout removed, assignments released", "layout", id, "windows", len(released))
			changed = true
		}
	}

	// A replaced layout may have lost zone indexes; drop entries that no
	// longer resolve.
	for _, entry := range e.table.Entries() {
		if !e.catalog.HasZone(entry.Zone.Layout, entry.Zone.Index) {
			e.table.Release(entry.Window)
			changed = true
		}
	}
	if changed || len(keep) > 0 {
		e.persistLocked()
	}
	return errs
}
