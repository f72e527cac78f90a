// Package layout holds layout definitions and the catalog that validates and
// resolves them.
package layout

import (
	"fmt"

	"github.com/zonetile/zonetile/internal/geometry"
	"github.com/zonetile/zonetile/internal/zone"
)

// Zone is a single zone template within a layout: a fractional rectangle plus
// a stable zone index. Indexes define assignment identity and cycling order.
type Zone struct {
	Index    int
	Template geometry.Template
}

// Layout is a named, ordered set of zone templates defining how a monitor is
// partitioned. Overlapping marks the rare layouts whose zones intentionally
// overlap; those skip the tiling invariant check.
type Layout struct {
	ID          string
	Name        string
	Overlapping bool
	Zones       []Zone
}

// referenceRect is the rectangle layouts are validated against. Any rect
// works for detecting fractional gaps and overlaps; this one keeps breakpoint
// rounding representative of real monitors.
var referenceRect = geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1440}

// Templates returns the layout's zone templates in zone order.
func (l Layout) Templates() []geometry.Template {
	out := make([]geometry.Template, len(l.Zones))
	for i, z := range l.Zones {
		out[i] = z.Template
	}
	return out
}

// ZonePos returns the position of the zone with the given index, or -1.
func (l Layout) ZonePos(index int) int {
	for i, z := range l.Zones {
		if z.Index == index {
			return i
		}
	}
	return -1
}

// Resolve computes absolute zone rectangles for the layout on a monitor
// rectangle, in zone order.
func (l Layout) Resolve(monitor geometry.Rect) []geometry.Rect {
	return geometry.Resolve(l.Templates(), monitor)
}

// Validate checks a layout definition. tolerance is the fraction of the
// monitor area that may be doubly covered before a non-overlapping layout is
// rejected (0 = strict tiling).
func (l Layout) Validate(tolerance float64) error {
	if l.ID == "" {
		return fmt.Errorf("%w: empty layout id", zone.ErrInvalidLayout)
	}
	if len(l.Zones) < 2 {
		return fmt.Errorf("%w: layout %q defines %d zones, need at least 2", zone.ErrInvalidLayout, l.ID, len(l.Zones))
	}

	seen := make(map[int]struct{}, len(l.Zones))
	for _, z := range l.Zones {
		if _, dup := seen[z.Index]; dup {
			return fmt.Errorf("%w: layout %q has duplicate zone index %d", zone.ErrInvalidLayout, l.ID, z.Index)
		}
		seen[z.Index] = struct{}{}

		t := z.Template
		if t.X < 0 || t.Y < 0 || t.W <= 0 || t.H <= 0 || t.X+t.W > 1.0000001 || t.Y+t.H > 1.0000001 {
			return fmt.Errorf("%w: layout %q zone %d has fractions outside [0,1]: x=%g y=%g w=%g h=%g",
				zone.ErrInvalidLayout, l.ID, z.Index, t.X, t.Y, t.W, t.H)
		}
	}

	if l.Overlapping {
		return nil
	}

	rects := l.Resolve(referenceRect)
	stats := geometry.Coverage(rects, referenceRect)
	if stats.OutsideArea > 0 {
		return fmt.Errorf("%w: layout %q zones extend outside the monitor by %d px",
			zone.ErrInvalidLayout, l.ID, stats.OutsideArea)
	}
	if stats.GapArea > 0 {
		return fmt.Errorf("%w: layout %q leaves %d px uncovered", zone.ErrInvalidLayout, l.ID, stats.GapArea)
	}
	allowed := int(tolerance * float64(referenceRect.Area()))
	if stats.OverlapArea > allowed {
		return fmt.Errorf("%w: layout %q zones overlap by %d px (tolerance %d)",
			zone.ErrInvalidLayout, l.ID, stats.OverlapArea, allowed)
	}
	return nil
}
