package conflict

import (
	"errors"
	"testing"

	"github.com/zonetile/zonetile/internal/geometry"
	"github.com/zonetile/zonetile/internal/layout"
	"github.com/zonetile/zonetile/internal/platform"
	"github.com/zonetile/zonetile/internal/state"
	"github.com/zonetile/zonetile/internal/zone"
)

func mustLayout(t *testing.T, id string) layout.Layout {
	t.Helper()
	cat := layout.NewCatalog(0)
	l, err := cat.Get(id)
	if err != nil {
		t.Fatalf("layout %q: %v", id, err)
	}
	return l
}

func ref(monitor int, layoutID string, index int) zone.Ref {
	return zone.Ref{Monitor: monitor, Layout: layoutID, Index: index}
}

func TestResolve_WindowClosed(t *testing.T) {
	tbl := state.NewTable()
	if err := tbl.Assign(10, ref(0, "halves", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	report, err := Resolve(tbl, Event{Kind: WindowClosed, Window: 10})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("closing a window needs no further corrections: %+v", report)
	}
	if tbl.Len() != 0 {
		t.Fatalf("assignment must be released")
	}
}

func TestResolve_MonitorRemoved(t *testing.T) {
	tbl := state.NewTable()
	if err := tbl.Assign(10, ref(0, "halves", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := tbl.Assign(20, ref(1, "halves", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	report, err := Resolve(tbl, Event{Kind: MonitorRemoved, Monitor: 0})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(report.Released) != 1 || report.Released[0] != 10 {
		t.Fatalf("expected window 10 orphaned, got %v", report.Released)
	}
	if _, ok := tbl.LookupByWindow(20); !ok {
		t.Fatalf("other monitor's assignment must survive")
	}
}

func TestResolve_LayoutSwitch_HalvesToThirds(t *testing.T) {
	tbl := state.NewTable()
	monitor := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	// Window occupies the left half.
	if err := tbl.Assign(10, ref(0, "halves", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	report, err := Resolve(tbl, Event{
		Kind:        LayoutSwitched,
		Monitor:     0,
		OldLayout:   mustLayout(t, "halves"),
		NewLayout:   mustLayout(t, "thirds"),
		MonitorRect: monitor,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(report.Remapped) != 1 || len(report.Dropped) != 0 {
		t.Fatalf("expected one remap, got %+v", report)
	}
	// Left half overlaps the leftmost third most (640px vs 320px vs 0).
	if report.Remapped[0].To != ref(0, "thirds", 0) {
		t.Fatalf("expected leftmost third, got %v", report.Remapped[0].To)
	}
	if got, _ := tbl.LookupByWindow(10); got != ref(0, "thirds", 0) {
		t.Fatalf("table not updated: %v", got)
	}
}

func TestResolve_LayoutSwitch_ContestedZone(t *testing.T) {
	tbl := state.NewTable()
	monitor := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	// Quarters 0 (top-left) and 2 (bottom-left) both overlap only the left
	// half. The lower old zone index is processed first and claims it; the
	// loser has no other overlapping zone and is dropped.
	if err := tbl.Assign(10, ref(0, "quarters", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := tbl.Assign(20, ref(0, "quarters", 2)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	report, err := Resolve(tbl, Event{
		Kind:        LayoutSwitched,
		Monitor:     0,
		OldLayout:   mustLayout(t, "quarters"),
		NewLayout:   mustLayout(t, "halves"),
		MonitorRect: monitor,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got, _ := tbl.LookupByWindow(10); got != ref(0, "halves", 0) {
		t.Fatalf("window 10: got %v", got)
	}
	if len(report.Remapped) != 1 || len(report.Dropped) != 1 || report.Dropped[0] != 20 {
		t.Fatalf("expected window 20 dropped, got %+v", report)
	}
	if _, ok := tbl.LookupByWindow(20); ok {
		t.Fatalf("dropped window must be floating")
	}
}

func TestResolve_LayoutSwitch_NoOverlapDrops(t *testing.T) {
	tbl := state.NewTable()
	monitor := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	// Three windows on thirds, switching to halves: only two zones exist,
	// so one window cannot be placed and is dropped.
	for i, win := range []platform.WindowID{10, 20, 30} {
		if err := tbl.Assign(win, ref(0, "thirds", i)); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	report, err := Resolve(tbl, Event{
		Kind:        LayoutSwitched,
		Monitor:     0,
		OldLayout:   mustLayout(t, "thirds"),
		NewLayout:   mustLayout(t, "halves"),
		MonitorRect: monitor,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(report.Remapped) != 2 || len(report.Dropped) != 1 {
		t.Fatalf("expected 2 remapped and 1 dropped, got %+v", report)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 assignments after switch, got %d", tbl.Len())
	}
}

func TestResolve_ZoneOccupied_NoDirectiveConflicts(t *testing.T) {
	tbl := state.NewTable()
	target := ref(0, "halves", 0)
	if err := tbl.Assign(10, target); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := Resolve(tbl, Event{Kind: ZoneOccupied, Window: 20, Target: target})
	if !errors.Is(err, zone.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// No mutation on conflict.
	if got, _ := tbl.LookupByZone(target); got != 10 {
		t.Fatalf("occupant must be unchanged")
	}
	if _, ok := tbl.LookupByWindow(20); ok {
		t.Fatalf("mover must stay floating")
	}
}

func TestResolve_ZoneOccupied_Swap(t *testing.T) {
	tbl := state.NewTable()
	a := ref(0, "halves", 0)
	b := ref(0, "halves", 1)
	if err := tbl.Assign(10, a); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := tbl.Assign(20, b); err != nil {
		t.Fatalf("assign: %v", err)
	}

	report, err := Resolve(tbl, Event{
		Kind: ZoneOccupied, Window: 10, Target: b, Directive: DirectiveSwap,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got, _ := tbl.LookupByWindow(10); got != b {
		t.Fatalf("mover must hold target, got %v", got)
	}
	if got, _ := tbl.LookupByWindow(20); got != a {
		t.Fatalf("occupant must hold mover's old zone, got %v", got)
	}
	if len(report.Remapped) != 1 || report.Remapped[0].Window != 20 {
		t.Fatalf("swap must report the occupant's move, got %+v", report)
	}
	// No zone is doubly assigned.
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 assignments, got %d", tbl.Len())
	}
}

func TestResolve_ZoneOccupied_SwapWithFloatingMoverDisplaces(t *testing.T) {
	tbl := state.NewTable()
	target := ref(0, "halves", 0)
	if err := tbl.Assign(10, target); err != nil {
		t.Fatalf("assign: %v", err)
	}

	report, err := Resolve(tbl, Event{
		Kind: ZoneOccupied, Window: 20, Target: target, Directive: DirectiveSwap,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got, _ := tbl.LookupByWindow(20); got != target {
		t.Fatalf("mover must hold target, got %v", got)
	}
	if _, ok := tbl.LookupByWindow(10); ok {
		t.Fatalf("occupant must be floating")
	}
	if len(report.Released) != 1 || report.Released[0] != 10 {
		t.Fatalf("expected occupant released, got %+v", report)
	}
}

func TestResolve_ZoneOccupied_Displace(t *testing.T) {
	tbl := state.NewTable()
	a := ref(0, "halves", 0)
	b := ref(0, "halves", 1)
	if err := tbl.Assign(10, a); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := tbl.Assign(20, b); err != nil {
		t.Fatalf("assign: %v", err)
	}

	report, err := Resolve(tbl, Event{
		Kind: ZoneOccupied, Window: 10, Target: b, Directive: DirectiveDisplace,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got, _ := tbl.LookupByWindow(10); got != b {
		t.Fatalf("mover must hold target, got %v", got)
	}
	if _, ok := tbl.LookupByWindow(20); ok {
		t.Fatalf("occupant must be floating")
	}
	if _, ok := tbl.LookupByZone(a); ok {
		t.Fatalf("mover's old zone must be free")
	}
	if len(report.Released) != 1 || report.Released[0] != 20 {
		t.Fatalf("expected occupant released, got %+v", report)
	}
}

func TestResolve_ZoneOccupied_FreeZoneAssigns(t *testing.T) {
	tbl := state.NewTable()
	target := ref(0, "halves", 1)

	report, err := Resolve(tbl, Event{Kind: ZoneOccupied, Window: 10, Target: target})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("free zone needs no corrections: %+v", report)
	}
	if got, _ := tbl.LookupByWindow(10); got != target {
		t.Fatalf("window must hold target, got %v", got)
	}
}
