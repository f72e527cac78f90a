// Package state holds the authoritative assignment table mapping windows to
// zones and back. Both directions are plain maps kept in sync through a
// single mutation path; the reverse lookup always agrees with the forward
// one.
package state

import (
	"fmt"
	"sort"

	"github.com/zonetile/zonetile/internal/platform"
	"github.com/zonetile/zonetile/internal/zone"
)

// Table is the assignment table. A zone holds at most one window under the
// exclusive policy; a window holds at most one zone. Not safe for concurrent
// use; the engine serializes all mutations.
type Table struct {
	byWindow map[platform.WindowID]zone.Ref
	byZone   map[zone.Ref]platform.WindowID
}

// NewTable creates an empty assignment table.
func NewTable() *Table {
	return &Table{
		byWindow: make(map[platform.WindowID]zone.Ref),
		byZone:   make(map[zone.Ref]platform.WindowID),
	}
}

// Len returns the number of assignments.
func (t *Table) Len() int {
	return len(t.byWindow)
}

// Assign binds a window to a zone. Fails with ErrConflict when the zone is
// held by a different window; the caller must evict explicitly. Reassigning a
// window to its current zone is a no-op. The table is unchanged on error.
func (t *Table) Assign(win platform.WindowID, ref zone.Ref) error {
	if occupant, ok := t.byZone[ref]; ok {
		if occupant == win {
			return nil
		}
		return fmt.Errorf("%w: zone %s held by window %d", zone.ErrConflict, ref, occupant)
	}
	if old, ok := t.byWindow[win]; ok {
		delete(t.byZone, old)
	}
	t.byWindow[win] = ref
	t.byZone[ref] = win
	return nil
}

// Release removes any assignment for the window. Returns the released zone
// and true, or false when the window was floating.
func (t *Table) Release(win platform.WindowID) (zone.Ref, bool) {
	ref, ok := t.byWindow[win]
	if !ok {
		return zone.Ref{}, false
	}
	delete(t.byWindow, win)
	delete(t.byZone, ref)
	return ref, true
}

// Swap trades the zones of two assigned windows.
func (t *Table) Swap(a, b platform.WindowID) error {
	refA, okA := t.byWindow[a]
	refB, okB := t.byWindow[b]
	if !okA || !okB {
		return fmt.Errorf("swap requires both windows assigned: %w", zone.ErrNotFound)
	}
	t.byWindow[a], t.byWindow[b] = refB, refA
	t.byZone[refA], t.byZone[refB] = b, a
	return nil
}

// LookupByWindow returns the window's zone, if any.
func (t *Table) LookupByWindow(win platform.WindowID) (zone.Ref, bool) {
	ref, ok := t.byWindow[win]
	return ref, ok
}

// LookupByZone returns the zone's occupant, if any.
func (t *Table) LookupByZone(ref zone.Ref) (platform.WindowID, bool) {
	win, ok := t.byZone[ref]
	return win, ok
}

// Windows returns all assigned windows in ascending id order.
func (t *Table) Windows() []platform.WindowID {
	out := make([]platform.WindowID, 0, len(t.byWindow))
	for win := range t.byWindow {
		out = append(out, win)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Entries returns all assignments ordered by window id.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.byWindow))
	for _, win := range t.Windows() {
		out = append(out, Entry{Window: win, Zone: t.byWindow[win]})
	}
	return out
}

// Entry is one window/zone binding.
type Entry struct {
	Window platform.WindowID
	Zone   zone.Ref
}

// ReleaseMonitor removes all assignments referencing the monitor and returns
// the released windows in ascending id order. Assignments on other monitors
// are untouched.
func (t *Table) ReleaseMonitor(monitorID int) []platform.WindowID {
	var released []platform.WindowID
	for _, win := range t.Windows() {
		if t.byWindow[win].Monitor == monitorID {
			t.Release(win)
			released = append(released, win)
		}
	}
	return released
}

// ReleaseLayout removes assignments referencing the layout on the given
// monitor, returning the released entries ordered by zone index.
func (t *Table) ReleaseLayout(monitorID int, layoutID string) []Entry {
	var released []Entry
	for _, win := range t.Windows() {
		ref := t.byWindow[win]
		if ref.Monitor == monitorID && ref.Layout == layoutID {
			t.Release(win)
			released = append(released, Entry{Window: win, Zone: ref})
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i].Zone.Index < released[j].Zone.Index })
	return released
}

// ReleaseLayoutEverywhere removes assignments referencing the layout on any
// monitor, returning the released windows.
func (t *Table) ReleaseLayoutEverywhere(layoutID string) []platform.WindowID {
	var released []platform.WindowID
	for _, win := range t.Windows() {
		if t.byWindow[win].Layout == layoutID {
			t.Release(win)
			released = append(released, win)
		}
	}
	return released
}
