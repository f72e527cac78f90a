package state

import (
	"github.com/zonetile/zonetile/internal/platform"
	"github.com/zonetile/zonetile/internal/zone"
)

// WindowKey is the serializable proxy for a window handle. Raw handles are
// not valid across restarts, so persisted entries identify windows by class,
// title, and virtual desktop instead.
type WindowKey struct {
	Class   string `json:"class"`
	Title   string `json:"title"`
	Desktop int    `json:"desktop"`
}

// Snapshot is the persisted assignment table: monitor id -> layout id ->
// zone index -> window proxy. Zone rectangles are never persisted; they are
// recomputed from the layout because monitor geometry changes between
// sessions.
type Snapshot struct {
	Assignments map[int]map[string]map[int]WindowKey `json:"assignments"`
}

// DescribeFunc maps a live window handle to its persistable proxy. ok=false
// drops the entry from the snapshot (the window vanished mid-write).
type DescribeFunc func(platform.WindowID) (WindowKey, bool)

// ResolveFunc maps a persisted proxy back to a live window handle. ok=false
// means the window no longer exists and the entry is silently dropped.
type ResolveFunc func(WindowKey) (platform.WindowID, bool)

// LayoutCheckFunc reports whether a layout id still defines a zone index.
type LayoutCheckFunc func(layoutID string, index int) bool

// Snapshot serializes the full table using describe to translate handles.
func (t *Table) Snapshot(describe DescribeFunc) Snapshot {
	snap := Snapshot{Assignments: make(map[int]map[string]map[int]WindowKey)}
	for _, e := range t.Entries() {
		key, ok := describe(e.Window)
		if !ok {
			continue
		}
		byLayout, ok := snap.Assignments[e.Zone.Monitor]
		if !ok {
			byLayout = make(map[string]map[int]WindowKey)
			snap.Assignments[e.Zone.Monitor] = byLayout
		}
		byIndex, ok := byLayout[e.Zone.Layout]
		if !ok {
			byIndex = make(map[int]WindowKey)
			byLayout[e.Zone.Layout] = byIndex
		}
		byIndex[e.Zone.Index] = key
	}
	return snap
}

// RestoreStats reports what a restore kept and what it repaired away.
type RestoreStats struct {
	Restored       int
	DroppedWindows int // proxy no longer resolves to a live window
	DroppedLayouts int // layout or zone index no longer registered
	DroppedDups    int // duplicate bindings for the same window
}

// Restore replaces the table contents from a persisted snapshot, validating
// every entry rather than trusting the input. Stale windows, dangling layout
// references, and duplicate window bindings are dropped; restore never fails.
// The result is a consistent, possibly smaller table.
func (t *Table) Restore(snap Snapshot, resolve ResolveFunc, layoutOK LayoutCheckFunc) RestoreStats {
	t.byWindow = make(map[platform.WindowID]zone.Ref)
	t.byZone = make(map[zone.Ref]platform.WindowID)

	var stats RestoreStats
	for monitorID, byLayout := range snap.Assignments {
		for layoutID, byIndex := range byLayout {
			for index, key := range byIndex {
				if layoutOK != nil && !layoutOK(layoutID, index) {
					stats.DroppedLayouts++
					continue
				}
				win, ok := resolve(key)
				if !ok {
					stats.DroppedWindows++
					continue
				}
				ref := zone.Ref{Monitor: monitorID, Layout: layoutID, Index: index}
				if _, bound := t.byWindow[win]; bound {
					stats.DroppedDups++
					continue
				}
				if _, occupied := t.byZone[ref]; occupied {
					stats.DroppedDups++
					continue
				}
				t.byWindow[win] = ref
				t.byZone[ref] = win
				stats.Restored++
			}
		}
	}
	return stats
}
