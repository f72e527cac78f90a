package layout

import (
	"fmt"

	"github.com/zonetile/zonetile/internal/geometry"
)

// Builtins returns the built-in layouts in catalog registration order.
func Builtins() []Layout {
	return []Layout{
		columns("halves", "Halves", 2),
		rowsLayout("vhalves", "Vertical Halves", 2),
		columns("thirds", "Thirds", 3),
		grid("quarters", "Quarters", 2, 2),
		grid("grid-2x3", "Grid 2x3", 2, 3),
		grid("grid-3x3", "Grid 3x3", 3, 3),
		columns("columns-3", "Three Columns", 3),
		columns("columns-4", "Four Columns", 4),
		mainSide("main-left", "Main Left", true),
		mainSide("main-right", "Main Right", false),
	}
}

// columns builds n equal-width full-height zones, indexed left to right.
func columns(id, name string, n int) Layout {
	zones := make([]Zone, n)
	for i := 0; i < n; i++ {
		zones[i] = Zone{
			Index: i,
			Template: geometry.Template{
				X: float64(i) / float64(n),
				Y: 0,
				W: 1.0 / float64(n),
				H: 1,
			},
		}
	}
	return Layout{ID: id, Name: name, Zones: zones}
}

// rowsLayout builds n equal-height full-width zones, indexed top to bottom.
func rowsLayout(id, name string, n int) Layout {
	zones := make([]Zone, n)
	for i := 0; i < n; i++ {
		zones[i] = Zone{
			Index: i,
			Template: geometry.Template{
				X: 0,
				Y: float64(i) / float64(n),
				W: 1,
				H: 1.0 / float64(n),
			},
		}
	}
	return Layout{ID: id, Name: name, Zones: zones}
}

// grid builds a rows x cols grid, indexed row-major from the top left.
func grid(id, name string, rows, cols int) Layout {
	zones := make([]Zone, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			zones = append(zones, Zone{
				Index: r*cols + c,
				Template: geometry.Template{
					X: float64(c) / float64(cols),
					Y: float64(r) / float64(rows),
					W: 1.0 / float64(cols),
					H: 1.0 / float64(rows),
				},
			})
		}
	}
	return Layout{ID: id, Name: name, Zones: zones}
}

// mainSide builds a 2/3-width main zone with two stacked side zones. Zone 0
// is always the main zone.
func mainSide(id, name string, mainLeft bool) Layout {
	const mainW = 2.0 / 3.0
	mainX, sideX := 0.0, mainW
	if !mainLeft {
		mainX, sideX = 1.0-mainW, 0.0
	}
	return Layout{
		ID:   id,
		Name: name,
		Zones: []Zone{
			{Index: 0, Template: geometry.Template{X: mainX, Y: 0, W: mainW, H: 1}},
			{Index: 1, Template: geometry.Template{X: sideX, Y: 0, W: 1 - mainW, H: 0.5}},
			{Index: 2, Template: geometry.Template{X: sideX, Y: 0.5, W: 1 - mainW, H: 0.5}},
		},
	}
}

// Grid builds an ad hoc NxM grid layout with a derived id, for callers that
// want grids beyond the built-in set.
func Grid(rows, cols int) (Layout, error) {
	if rows < 1 || cols < 1 || rows*cols < 2 {
		return Layout{}, fmt.Errorf("grid %dx%d has fewer than 2 zones", rows, cols)
	}
	id := fmt.Sprintf("grid-%dx%d", rows, cols)
	return grid(id, fmt.Sprintf("Grid %dx%d", rows, cols), rows, cols), nil
}
