// Package zone defines the zone reference type shared by the layout engine
// packages, plus the error kinds surfaced by engine operations.
package zone

import (
	"errors"
	"fmt"
)

// Ref addresses a single zone: a monitor, a layout on that monitor, and the
// zone's stable index within the layout. Refs are the only persisted form of
// a zone; absolute rectangles are always recomputed from the layout.
type Ref struct {
	Monitor int    `json:"monitor"`
	Layout  string `json:"layout"`
	Index   int    `json:"index"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s[%d]@monitor%d", r.Layout, r.Index, r.Monitor)
}

var (
	// ErrInvalidLayout marks a layout definition rejected at registration
	// (malformed zones, duplicate indexes, or a tiling invariant violation).
	ErrInvalidLayout = errors.New("invalid layout")

	// ErrNotFound marks a reference to a monitor, window, layout, or zone
	// index that does not currently exist. Always recoverable.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an attempt to assign a window to an occupied zone
	// without an eviction directive.
	ErrConflict = errors.New("zone occupied")
)
