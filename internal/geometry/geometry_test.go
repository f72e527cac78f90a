package geometry

import "testing"

func quarterTemplates() []Template {
	return []Template{
		{X: 0, Y: 0, W: 0.5, H: 0.5},
		{X: 0.5, Y: 0, W: 0.5, H: 0.5},
		{X: 0, Y: 0.5, W: 0.5, H: 0.5},
		{X: 0.5, Y: 0.5, W: 0.5, H: 0.5},
	}
}

func TestResolve_QuartersOn1920x1080(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	rects := Resolve(quarterTemplates(), monitor)

	expected := []Rect{
		{X: 0, Y: 0, Width: 960, Height: 540},
		{X: 960, Y: 0, Width: 960, Height: 540},
		{X: 0, Y: 540, Width: 960, Height: 540},
		{X: 960, Y: 540, Width: 960, Height: 540},
	}
	if len(rects) != len(expected) {
		t.Fatalf("expected %d rects, got %d", len(expected), len(rects))
	}
	for i, want := range expected {
		if rects[i] != want {
			t.Fatalf("zone %d: expected %+v, got %+v", i, want, rects[i])
		}
	}
}

func TestResolve_ThirdsOnOddWidthLeavesNoGap(t *testing.T) {
	thirds := []Template{
		{X: 0, Y: 0, W: 1.0 / 3.0, H: 1},
		{X: 1.0 / 3.0, Y: 0, W: 1.0 / 3.0, H: 1},
		{X: 2.0 / 3.0, Y: 0, W: 1.0 / 3.0, H: 1},
	}
	monitor := Rect{X: 7, Y: 3, Width: 1001, Height: 997}
	rects := Resolve(thirds, monitor)

	// Adjacent zones must share pixel edges exactly.
	if rects[0].X != monitor.X {
		t.Fatalf("first zone must start at monitor origin, got %d", rects[0].X)
	}
	if rects[0].X+rects[0].Width != rects[1].X {
		t.Fatalf("gap between zone 0 and 1: %d vs %d", rects[0].X+rects[0].Width, rects[1].X)
	}
	if rects[1].X+rects[1].Width != rects[2].X {
		t.Fatalf("gap between zone 1 and 2: %d vs %d", rects[1].X+rects[1].Width, rects[2].X)
	}
	if rects[2].X+rects[2].Width != monitor.X+monitor.Width {
		t.Fatalf("last zone must end at monitor edge, got %d", rects[2].X+rects[2].Width)
	}

	stats := Coverage(rects, monitor)
	if stats.GapArea != 0 || stats.OverlapArea != 0 || stats.OutsideArea != 0 {
		t.Fatalf("expected exact tiling, got %+v", stats)
	}
}

func TestResolve_OffsetMonitorOrigin(t *testing.T) {
	halves := []Template{
		{X: 0, Y: 0, W: 0.5, H: 1},
		{X: 0.5, Y: 0, W: 0.5, H: 1},
	}
	monitor := Rect{X: 1920, Y: 200, Width: 1280, Height: 1024}
	rects := Resolve(halves, monitor)

	if rects[0].X != 1920 || rects[0].Y != 200 {
		t.Fatalf("expected origin offset preserved, got %+v", rects[0])
	}
	if rects[0].Width+rects[1].Width != 1280 {
		t.Fatalf("halves must sum to monitor width, got %d", rects[0].Width+rects[1].Width)
	}

	stats := Coverage(rects, monitor)
	if stats.GapArea != 0 || stats.OverlapArea != 0 {
		t.Fatalf("expected exact tiling, got %+v", stats)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 2560, Height: 1440}
	a := Resolve(quarterTemplates(), monitor)
	b := Resolve(quarterTemplates(), monitor)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("resolve is not deterministic: %+v vs %+v", a[i], b[i])
		}
	}
}

func TestCoverage_DetectsGapsAndOverlaps(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	gapped := []Rect{
		{X: 0, Y: 0, Width: 40, Height: 100},
		{X: 60, Y: 0, Width: 40, Height: 100},
	}
	stats := Coverage(gapped, monitor)
	if stats.GapArea != 20*100 {
		t.Fatalf("expected gap area 2000, got %d", stats.GapArea)
	}

	overlapping := []Rect{
		{X: 0, Y: 0, Width: 60, Height: 100},
		{X: 40, Y: 0, Width: 60, Height: 100},
	}
	stats = Coverage(overlapping, monitor)
	if stats.OverlapArea != 20*100 {
		t.Fatalf("expected overlap area 2000, got %d", stats.OverlapArea)
	}
	if stats.GapArea != 0 {
		t.Fatalf("expected no gaps, got %d", stats.GapArea)
	}
}

func TestInset(t *testing.T) {
	r := Rect{X: 0, Y: 30, Width: 960, Height: 1050}
	got := r.Inset(8)
	want := Rect{X: 8, Y: 38, Width: 944, Height: 1034}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if r.Inset(0) != r {
		t.Fatal("zero gap must be a no-op")
	}

	// A gap larger than the rect clamps instead of inverting.
	tiny := Rect{X: 10, Y: 10, Width: 6, Height: 400}
	shrunk := tiny.Inset(50)
	if shrunk.Width < 1 || shrunk.Height < 1 {
		t.Fatalf("inset collapsed rect: %+v", shrunk)
	}
}

func TestIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 50, Width: 100, Height: 100}
	got := Intersect(a, b)
	want := Rect{X: 50, Y: 50, Width: 50, Height: 50}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	c := Rect{X: 200, Y: 200, Width: 10, Height: 10}
	if Intersect(a, c).Area() != 0 {
		t.Fatalf("disjoint rects must not intersect")
	}
}
