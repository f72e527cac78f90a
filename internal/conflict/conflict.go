// Package conflict computes the state corrections required when a change
// event invalidates zone assignments. Events are a tagged variant dispatched
// through a single typed entry point; each kind has a fixed resolution
// policy and the detector never guesses where user intent is required.
package conflict

import (
	"fmt"

	"github.com/zonetile/zonetile/internal/geometry"
	"github.com/zonetile/zonetile/internal/layout"
	"github.com/zonetile/zonetile/internal/platform"
	"github.com/zonetile/zonetile/internal/state"
	"github.com/zonetile/zonetile/internal/zone"
)

// EventKind discriminates the change events the detector handles.
type EventKind int

const (
	// WindowClosed releases the window's assignment. No ambiguity.
	WindowClosed EventKind = iota
	// MonitorRemoved releases every assignment on the monitor and reports
	// the orphaned windows. The engine never auto-migrates them.
	MonitorRemoved
	// LayoutSwitched remaps assignments from the old layout to the new one
	// by largest positional overlap.
	LayoutSwitched
	// ZoneOccupied resolves a requested assignment onto an occupied zone
	// using the caller's eviction directive.
	ZoneOccupied
)

func (k EventKind) String() string {
	switch k {
	case WindowClosed:
		return "window-closed"
	case MonitorRemoved:
		return "monitor-removed"
	case LayoutSwitched:
		return "layout-switched"
	case ZoneOccupied:
		return "zone-occupied"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Directive is the caller-supplied eviction instruction for ZoneOccupied.
type Directive int

const (
	// DirectiveNone means no eviction was authorized; an occupied target
	// zone is a conflict error.
	DirectiveNone Directive = iota
	// DirectiveSwap trades zones between the mover and the occupant.
	DirectiveSwap
	// DirectiveDisplace releases the occupant, which becomes floating.
	DirectiveDisplace
)

// Event is the tagged payload for Resolve. Only the fields relevant to Kind
// are read.
type Event struct {
	Kind EventKind

	// WindowClosed, ZoneOccupied: the window the event concerns.
	Window platform.WindowID

	// MonitorRemoved, LayoutSwitched: the monitor concerned.
	Monitor int

	// LayoutSwitched: old and new layouts plus the monitor rectangle both
	// are resolved against.
	OldLayout   layout.Layout
	NewLayout   layout.Layout
	MonitorRect geometry.Rect

	// ZoneOccupied: the requested target zone and the eviction directive.
	Target    zone.Ref
	Directive Directive
}

// Remap records one window moved from an old zone to a new one during a
// layout switch or a swap.
type Remap struct {
	Window platform.WindowID
	From   zone.Ref
	To     zone.Ref
}

// Report describes the corrections applied to the table.
type Report struct {
	// Released windows are floating now (closed windows excluded).
	Released []platform.WindowID
	// Remapped windows were moved to a new zone and need their geometry
	// reapplied.
	Remapped []Remap
	// Dropped windows could not be remapped (no positional overlap or the
	// candidate zones were already claimed); they are floating now.
	Dropped []platform.WindowID
}

// Empty reports whether the event required no corrections.
func (r Report) Empty() bool {
	return len(r.Released) == 0 && len(r.Remapped) == 0 && len(r.Dropped) == 0
}

// Resolve applies the event's resolution policy to the table and returns the
// corrections made. On error the table is unchanged.
func Resolve(tbl *state.Table, ev Event) (Report, error) {
	switch ev.Kind {
	case WindowClosed:
		tbl.Release(ev.Window)
		return Report{}, nil

	case MonitorRemoved:
		released := tbl.ReleaseMonitor(ev.Monitor)
		return Report{Released: released}, nil

	case LayoutSwitched:
		return resolveLayoutSwitch(tbl, ev)

	case ZoneOccupied:
		return resolveOccupied(tbl, ev)
	}
	return Report{}, fmt.Errorf("unknown event kind %d", int(ev.Kind))
}

// resolveLayoutSwitch remaps every assignment under the old layout on the
// monitor to the new layout. For each window, candidate new zones are ranked
// by intersection area with the window's old resolved rectangle, ties broken
// by lowest zone index; the best unclaimed candidate with nonzero overlap
// wins. Windows with no such candidate are dropped.
func resolveLayoutSwitch(tbl *state.Table, ev Event) (Report, error) {
	entries := tbl.ReleaseLayout(ev.Monitor, ev.OldLayout.ID)
	if len(entries) == 0 {
		return Report{}, nil
	}

	oldRects := ev.OldLayout.Resolve(ev.MonitorRect)
	newRects := ev.NewLayout.Resolve(ev.MonitorRect)

	var report Report
	for _, e := range entries {
		pos := ev.OldLayout.ZonePos(e.Zone.Index)
		if pos < 0 {
			report.Dropped = append(report.Dropped, e.Window)
			continue
		}
		oldRect := oldRects[pos]

		best := -1
		bestArea := 0
		for i, z := range ev.NewLayout.Zones {
			area := geometry.Intersect(oldRect, newRects[i]).Area()
			if area == 0 {
				continue
			}
			target := zone.Ref{Monitor: ev.Monitor, Layout: ev.NewLayout.ID, Index: z.Index}
			if _, taken := tbl.LookupByZone(target); taken {
				continue
			}
			if area > bestArea || (area == bestArea && best >= 0 && z.Index < ev.NewLayout.Zones[best].Index) {
				best = i
				bestArea = area
			}
		}
		if best < 0 {
			report.Dropped = append(report.Dropped, e.Window)
			continue
		}

		target := zone.Ref{Monitor: ev.Monitor, Layout: ev.NewLayout.ID, Index: ev.NewLayout.Zones[best].Index}
		if err := tbl.Assign(e.Window, target); err != nil {
			report.Dropped = append(report.Dropped, e.Window)
			continue
		}
		report.Remapped = append(report.Remapped, Remap{Window: e.Window, From: e.Zone, To: target})
	}
	return report, nil
}

// resolveOccupied handles an assignment request onto an occupied zone. With
// no directive this is a conflict error. Swap trades zones when the mover is
// assigned and degrades to displace when it is floating.
func resolveOccupied(tbl *state.Table, ev Event) (Report, error) {
	occupant, occupied := tbl.LookupByZone(ev.Target)
	if !occupied || occupant == ev.Window {
		if err := tbl.Assign(ev.Window, ev.Target); err != nil {
			return Report{}, err
		}
		return Report{}, nil
	}

	switch ev.Directive {
	case DirectiveNone:
		return Report{}, fmt.Errorf("%w: zone %s held by window %d", zone.ErrConflict, ev.Target, occupant)

	case DirectiveSwap:
		from, moverAssigned := tbl.LookupByWindow(ev.Window)
		if !moverAssigned {
			// Nothing to trade; the occupant floats.
			tbl.Release(occupant)
			if err := tbl.Assign(ev.Window, ev.Target); err != nil {
				return Report{}, err
			}
			return Report{Released: []platform.WindowID{occupant}}, nil
		}
		if err := tbl.Swap(ev.Window, occupant); err != nil {
			return Report{}, err
		}
		return Report{
			Remapped: []Remap{{Window: occupant, From: ev.Target, To: from}},
		}, nil

	case DirectiveDisplace:
		tbl.Release(occupant)
		if err := tbl.Assign(ev.Window, ev.Target); err != nil {
			return Report{}, err
		}
		return Report{Released: []platform.WindowID{occupant}}, nil
	}
	return Report{}, fmt.Errorf("unknown eviction directive %d", int(ev.Directive))
}
