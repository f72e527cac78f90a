package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Client is one managed application window with the properties the engine
// tracks.
type Client struct {
	ID      uint32
	Class   string
	Title   string
	Desktop int

	X      int
	Y      int
	Width  int
	Height int
}

// ListClients returns every normal application window from the EWMH client
// list. Docks, desktops, splashes and notifications are filtered out.
func (c *Connection) ListClients() ([]Client, error) {
	ids, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	var clients []Client
	for _, id := range ids {
		if !c.IsNormalWindow(id) {
			continue
		}
		clients = append(clients, c.describeClient(id))
	}
	return clients, nil
}

func (c *Connection) describeClient(id xproto.Window) Client {
	client := Client{ID: uint32(id)}

	if hints, err := icccm.WmClassGet(c.XUtil, id); err == nil {
		client.Class = hints.Class
	}
	if name, err := ewmh.WmNameGet(c.XUtil, id); err == nil && name != "" {
		client.Title = name
	} else if name, err := icccm.WmNameGet(c.XUtil, id); err == nil {
		client.Title = name
	}
	if desktop, err := c.GetWindowDesktop(uint32(id)); err == nil {
		client.Desktop = desktop
	}

	if geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(id)).Reply(); err == nil {
		client.Width = int(geom.Width)
		client.Height = int(geom.Height)
		if translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), id, c.Root, 0, 0).Reply(); err == nil {
			client.X = int(translate.DstX)
			client.Y = int(translate.DstY)
		}
	}
	return client
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
// Maximized windows are unmaximized first or the WM ignores the request.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Best effort; some windows don't expose _NET_WM_STATE.
	_ = c.unmaximizeWindow(windowID)

	win := xwindow.New(c.XUtil, windowID)

	// EWMH MoveResize first for WM compatibility, direct configure as a
	// fallback for WMs that ignore the client message.
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		win.MoveResize(x, y, width, height)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window.
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, windowID, 0, state)
		}
	}
	return nil
}

// IsNormalWindow checks if a window is a normal application window.
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// GetActiveWindow returns the currently focused window.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// GetWindowDesktop returns the desktop number a window is on. Uses the
// _NET_WM_DESKTOP atom. Returns -1 for sticky windows (all desktops).
func (c *Connection) GetWindowDesktop(windowID uint32) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, xproto.Window(windowID))
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	// 0xFFFFFFFF means the window is on all desktops (sticky)
	if desktop == 0xFFFFFFFF {
		return -1, nil
	}
	return int(desktop), nil
}

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}
