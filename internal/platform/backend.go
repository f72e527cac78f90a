// Package platform abstracts the window system: monitor enumeration, window
// listing, and geometry application. The engine treats everything here as an
// external collaborator and never caches its snapshots across operations.
package platform

import "github.com/zonetile/zonetile/internal/geometry"

// WindowID is a platform-neutral window handle. Handles are stable for the
// lifetime of a window within a session, not across restarts.
type WindowID uint32

// Display describes a monitor: its full bounds and the usable work area with
// panels and docks excluded. IDs are stable within a session only.
type Display struct {
	ID      int
	Name    string
	Primary bool
	Bounds  geometry.Rect
	Usable  geometry.Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID      WindowID
	Class   string
	Title   string
	Desktop int
	Bounds  geometry.Rect
}

// Backend abstracts window-system operations.
type Backend interface {
	// Displays returns the current ordered monitor snapshot.
	Displays() ([]Display, error)
	// ActiveDisplay returns the monitor holding the focused window (or the
	// pointer), with its usable area populated.
	ActiveDisplay() (Display, error)
	// ActiveWindow returns the currently focused window.
	ActiveWindow() (Window, error)
	// ListWindows returns all tileable top-level windows.
	ListWindows() ([]Window, error)
	// MoveResize applies an absolute rectangle to a window. Idempotent;
	// last write wins.
	MoveResize(id WindowID, bounds geometry.Rect) error
}
