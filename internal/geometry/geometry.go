// Package geometry resolves fractional zone templates against monitor
// rectangles. It is pure: no state, no failure paths beyond preconditions
// guaranteed by layout validation.
package geometry

import (
	"math"
	"sort"
)

// Rect describes a rectangular region in global screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the rectangle's area in pixels.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersect returns the intersection of two rectangles. An empty intersection
// has zero width and height.
func Intersect(a, b Rect) Rect {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Inset shrinks the rectangle by gap pixels on every side. The result never
// collapses below 1x1; oversized gaps are clamped instead.
func (r Rect) Inset(gap int) Rect {
	if gap <= 0 {
		return r
	}
	gx, gy := gap, gap
	if 2*gx >= r.Width {
		gx = (r.Width - 1) / 2
	}
	if 2*gy >= r.Height {
		gy = (r.Height - 1) / 2
	}
	if gx < 0 {
		gx = 0
	}
	if gy < 0 {
		gy = 0
	}
	return Rect{X: r.X + gx, Y: r.Y + gy, Width: r.Width - 2*gx, Height: r.Height - 2*gy}
}

// Template is a zone rectangle expressed as fractions of a monitor rectangle.
// All values are in [0, 1].
type Template struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"width" yaml:"width"`
	H float64 `json:"height" yaml:"height"`
}

// Resolve maps zone templates onto a monitor rectangle, returning absolute
// rectangles in template order.
//
// Every distinct fractional edge value is rounded to a pixel exactly once,
// via per-layout column and row breakpoint sets. Zones that share a
// fractional edge therefore share the same pixel edge: independent rounding
// of adjacent rectangles can otherwise leave 1-pixel gaps (e.g. thirds on a
// 1001-pixel monitor).
func Resolve(templates []Template, monitor Rect) []Rect {
	if len(templates) == 0 {
		return nil
	}

	cols := breakpoints(templates, monitor.X, monitor.Width, func(t Template) (float64, float64) {
		return t.X, t.X + t.W
	})
	rows := breakpoints(templates, monitor.Y, monitor.Height, func(t Template) (float64, float64) {
		return t.Y, t.Y + t.H
	})

	rects := make([]Rect, len(templates))
	for i, t := range templates {
		x1 := cols[t.X]
		x2 := cols[t.X+t.W]
		y1 := rows[t.Y]
		y2 := rows[t.Y+t.H]
		rects[i] = Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
	}
	return rects
}

// breakpoints collects the distinct fractional edges along one axis and
// rounds each to a pixel offset (round-half-up) exactly once.
func breakpoints(templates []Template, origin, size int, edges func(Template) (float64, float64)) map[float64]int {
	out := make(map[float64]int, len(templates)*2)
	for _, t := range templates {
		lo, hi := edges(t)
		for _, f := range [2]float64{lo, hi} {
			if _, ok := out[f]; !ok {
				out[f] = origin + roundHalfUp(f*float64(size))
			}
		}
	}
	return out
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// CoverageStats describes how a set of resolved zones covers a monitor
// rectangle. Computed on the breakpoint cell grid, so it is exact for
// rectangles produced by Resolve.
type CoverageStats struct {
	GapArea     int // pixels of the monitor covered by no zone
	OverlapArea int // pixels counted beyond single coverage
	OutsideArea int // zone pixels falling outside the monitor
}

// Coverage computes gap, overlap, and out-of-bounds areas for resolved zones
// against the monitor rectangle they were resolved on.
func Coverage(zones []Rect, monitor Rect) CoverageStats {
	xs := cellEdges(zones, monitor, func(r Rect) (int, int) { return r.X, r.X + r.Width })
	ys := cellEdges(zones, monitor, func(r Rect) (int, int) { return r.Y, r.Y + r.Height })

	var stats CoverageStats
	for _, z := range zones {
		outside := z.Area() - Intersect(z, monitor).Area()
		stats.OutsideArea += outside
	}

	for i := 0; i+1 < len(xs); i++ {
		for j := 0; j+1 < len(ys); j++ {
			cell := Rect{X: xs[i], Y: ys[j], Width: xs[i+1] - xs[i], Height: ys[j+1] - ys[j]}
			if Intersect(cell, monitor).Area() != cell.Area() {
				continue
			}
			covered := 0
			for _, z := range zones {
				if Intersect(cell, z).Area() == cell.Area() {
					covered++
				}
			}
			switch {
			case covered == 0:
				stats.GapArea += cell.Area()
			case covered > 1:
				stats.OverlapArea += cell.Area() * (covered - 1)
			}
		}
	}
	return stats
}

func cellEdges(zones []Rect, monitor Rect, edges func(Rect) (int, int)) []int {
	seen := make(map[int]struct{}, len(zones)*2+2)
	add := func(v int) { seen[v] = struct{}{} }

	lo, hi := edges(monitor)
	add(lo)
	add(hi)
	for _, z := range zones {
		zlo, zhi := edges(z)
		add(zlo)
		add(zhi)
	}

	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
