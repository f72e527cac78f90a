//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/zonetile/zonetile/internal/geometry"
	"github.com/zonetile/zonetile/internal/x11"
)

// LinuxBackend implements Backend over an X11 connection.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend wraps an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Displays returns all active monitors, sorted by ID.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// ActiveDisplay returns the monitor holding the focused window, falling back
// to the monitor under the pointer.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}

	active, err := conn.GetActiveMonitor()
	if err != nil {
		return Display{}, err
	}
	return displayFromMonitor(*active), nil
}

// ActiveWindow returns the currently focused window.
func (b *LinuxBackend) ActiveWindow() (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return Window{}, err
	}
	if wid == 0 {
		return Window{}, fmt.Errorf("no active window")
	}

	windows, err := b.ListWindows()
	if err != nil {
		return Window{}, err
	}
	for _, w := range windows {
		if w.ID == WindowID(wid) {
			return w, nil
		}
	}
	return Window{}, fmt.Errorf("active window %d is not a managed window", wid)
}

// ListWindows returns every normal application window, sorted by ID.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ListClients()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, c := range clients {
		windows = append(windows, Window{
			ID:      WindowID(c.ID),
			Class:   c.Class,
			Title:   c.Title,
			Desktop: c.Desktop,
			Bounds:  geometry.Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height},
		})
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})
	return windows, nil
}

// MoveResize moves and resizes a window to the given rectangle.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds geometry.Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X, bounds.Y, bounds.Width, bounds.Height,
	)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:      m.ID,
		Name:    m.Name,
		Primary: m.Primary,
		Bounds:  geometry.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		Usable:  geometry.Rect{X: m.UsableX, Y: m.UsableY, Width: m.UsableW, Height: m.UsableH},
	}
}
