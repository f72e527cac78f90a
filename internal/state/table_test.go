package state

import (
	"errors"
	"testing"

	"github.com/zonetile/zonetile/internal/platform"
	"github.com/zonetile/zonetile/internal/zone"
)

func ref(monitor int, layout string, index int) zone.Ref {
	return zone.Ref{Monitor: monitor, Layout: layout, Index: index}
}

func TestAssign_RoundTrip(t *testing.T) {
	tbl := NewTable()
	r := ref(0, "halves", 0)
	if err := tbl.Assign(10, r); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	got, ok := tbl.LookupByWindow(10)
	if !ok || got != r {
		t.Fatalf("lookupByWindow: got %v ok=%v", got, ok)
	}
	win, ok := tbl.LookupByZone(r)
	if !ok || win != 10 {
		t.Fatalf("lookupByZone: got %v ok=%v", win, ok)
	}
}

func TestAssign_ConflictOnOccupiedZone(t *testing.T) {
	tbl := NewTable()
	r := ref(0, "halves", 0)
	if err := tbl.Assign(10, r); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	err := tbl.Assign(20, r)
	if !errors.Is(err, zone.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// Table unchanged on error.
	if win, _ := tbl.LookupByZone(r); win != 10 {
		t.Fatalf("occupant changed on failed assign: %v", win)
	}
	if _, ok := tbl.LookupByWindow(20); ok {
		t.Fatalf("rejected window must stay floating")
	}
}

func TestAssign_IdempotentOnSameZone(t *testing.T) {
	tbl := NewTable()
	r := ref(0, "halves", 1)
	if err := tbl.Assign(10, r); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if err := tbl.Assign(10, r); err != nil {
		t.Fatalf("reassign to same zone must be a no-op: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", tbl.Len())
	}
}

func TestAssign_MoveClearsOldZone(t *testing.T) {
	tbl := NewTable()
	a := ref(0, "halves", 0)
	b := ref(0, "halves", 1)
	if err := tbl.Assign(10, a); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if err := tbl.Assign(10, b); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if _, ok := tbl.LookupByZone(a); ok {
		t.Fatalf("old zone must be free after move")
	}
	if win, _ := tbl.LookupByZone(b); win != 10 {
		t.Fatalf("new zone must hold window")
	}
}

func TestRelease(t *testing.T) {
	tbl := NewTable()
	r := ref(1, "thirds", 2)
	if err := tbl.Assign(10, r); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	released, ok := tbl.Release(10)
	if !ok || released != r {
		t.Fatalf("release: got %v ok=%v", released, ok)
	}
	if _, ok := tbl.LookupByZone(r); ok {
		t.Fatalf("zone must be free after release")
	}

	// Releasing a floating window is a no-op.
	if _, ok := tbl.Release(10); ok {
		t.Fatalf("double release must report not-assigned")
	}
}

func TestSwap(t *testing.T) {
	tbl := NewTable()
	a := ref(0, "halves", 0)
	b := ref(0, "halves", 1)
	if err := tbl.Assign(10, a); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if err := tbl.Assign(20, b); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if err := tbl.Swap(10, 20); err != nil {
		t.Fatalf("swap failed: %v", err)
	}
	if got, _ := tbl.LookupByWindow(10); got != b {
		t.Fatalf("window 10 must hold %v, got %v", b, got)
	}
	if got, _ := tbl.LookupByWindow(20); got != a {
		t.Fatalf("window 20 must hold %v, got %v", a, got)
	}
	if tbl.Len() != 2 {
		t.Fatalf("swap must not change entry count")
	}

	if err := tbl.Swap(10, 99); !errors.Is(err, zone.ErrNotFound) {
		t.Fatalf("swap with floating window must fail, got %v", err)
	}
}

func TestReleaseMonitor_OnlyAffectsThatMonitor(t *testing.T) {
	tbl := NewTable()
	if err := tbl.Assign(10, ref(0, "halves", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := tbl.Assign(20, ref(0, "halves", 1)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := tbl.Assign(30, ref(1, "thirds", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	released := tbl.ReleaseMonitor(0)
	if len(released) != 2 || released[0] != 10 || released[1] != 20 {
		t.Fatalf("unexpected released set: %v", released)
	}
	if _, ok := tbl.LookupByWindow(30); !ok {
		t.Fatalf("disjoint monitor's assignment must be untouched")
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", tbl.Len())
	}
}

func TestReleaseLayout(t *testing.T) {
	tbl := NewTable()
	if err := tbl.Assign(10, ref(0, "halves", 1)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := tbl.Assign(20, ref(0, "halves", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := tbl.Assign(30, ref(0, "thirds", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := tbl.Assign(40, ref(1, "halves", 0)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	released := tbl.ReleaseLayout(0, "halves")
	if len(released) != 2 {
		t.Fatalf("expected 2 released entries, got %d", len(released))
	}
	// Ordered by zone index.
	if released[0].Window != 20 || released[1].Window != 10 {
		t.Fatalf("unexpected order: %+v", released)
	}
	if _, ok := tbl.LookupByWindow(30); !ok {
		t.Fatalf("other layout on same monitor must survive")
	}
	if _, ok := tbl.LookupByWindow(40); !ok {
		t.Fatalf("same layout on other monitor must survive")
	}
}

func TestBijectionInvariant(t *testing.T) {
	tbl := NewTable()
	refs := []zone.Ref{
		ref(0, "halves", 0), ref(0, "halves", 1),
		ref(1, "quarters", 2), ref(2, "thirds", 1),
	}
	for i, r := range refs {
		if err := tbl.Assign(platform.WindowID(100+i), r); err != nil {
			t.Fatalf("assign %d: %v", i, err)
		}
	}

	for _, e := range tbl.Entries() {
		win, ok := tbl.LookupByZone(e.Zone)
		if !ok || win != e.Window {
			t.Fatalf("reverse lookup disagrees for %v: got %v ok=%v", e.Zone, win, ok)
		}
	}
}
