package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/zonetile/zonetile/internal/engine"
	"github.com/zonetile/zonetile/internal/geometry"
	"github.com/zonetile/zonetile/internal/ipc"
	"github.com/zonetile/zonetile/internal/layout"
	"github.com/zonetile/zonetile/internal/platform"
)

type fakeBackend struct {
	displays []platform.Display
	windows  []platform.Window
	moved    map[platform.WindowID]geometry.Rect
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		displays: []platform.Display{
			{ID: 0, Name: "DP-1", Primary: true,
				Bounds: geometry.Rect{Width: 1920, Height: 1080},
				Usable: geometry.Rect{Width: 1920, Height: 1080}},
		},
		windows: []platform.Window{
			{ID: 10, Class: "term", Title: "shell"},
			{ID: 20, Class: "browser", Title: "docs"},
		},
		moved: make(map[platform.WindowID]geometry.Rect),
	}
}

func (b *fakeBackend) Displays() ([]platform.Display, error) { return b.displays, nil }
func (b *fakeBackend) ActiveDisplay() (platform.Display, error) {
	return b.displays[0], nil
}
func (b *fakeBackend) ActiveWindow() (platform.Window, error) {
	if len(b.windows) == 0 {
		return platform.Window{}, errors.New("no active window")
	}
	return b.windows[0], nil
}
func (b *fakeBackend) ListWindows() ([]platform.Window, error) { return b.windows, nil }
func (b *fakeBackend) MoveResize(id platform.WindowID, bounds geometry.Rect) error {
	b.moved[id] = bounds
	return nil
}

// startTestServer runs a real IPC server on a private socket and returns an
// MCP server whose client talks to it.
func startTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	b := newFakeBackend()
	cat := layout.NewCatalog(0.005)
	eng, err := engine.New(b, cat, "halves", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	srv, err := ipc.NewServer(eng, b, make(chan struct{}, 1))
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	return NewServer()
}

func TestStatusTool(t *testing.T) {
	s := startTestServer(t)

	_, out, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !out.DaemonRunning || out.Monitors != 1 || out.DefaultLayout != "halves" {
		t.Fatalf("status = %+v", out)
	}
}

func TestListLayoutsTool(t *testing.T) {
	s := startTestServer(t)

	_, out, err := s.handleListLayouts(context.Background(), nil, ListLayoutsInput{})
	if err != nil {
		t.Fatalf("list_layouts: %v", err)
	}
	found := false
	for _, l := range out.Layouts {
		if l.ID == "halves" {
			if !l.Builtin || !l.Default || l.Zones != 2 {
				t.Fatalf("halves = %+v", l)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("halves missing from %+v", out.Layouts)
	}
}

func TestAssignAndZonesTools(t *testing.T) {
	s := startTestServer(t)

	// Omitted window ID resolves to the focused window (id 10).
	_, assigned, err := s.handleAssignWindow(context.Background(), nil, AssignWindowInput{ZoneIndex: 0})
	if err != nil {
		t.Fatalf("assign_window: %v", err)
	}
	if assigned.WindowID != 10 || assigned.Width != 960 {
		t.Fatalf("assigned = %+v", assigned)
	}

	_, zones, err := s.handleGetZones(context.Background(), nil, GetZonesInput{})
	if err != nil {
		t.Fatalf("get_zones: %v", err)
	}
	if zones.Layout != "halves" || len(zones.Zones) != 2 {
		t.Fatalf("zones = %+v", zones)
	}
	if zones.Zones[0].WindowID != 10 || zones.Zones[0].WindowTitle != "shell" {
		t.Fatalf("zone 0 occupant = %+v", zones.Zones[0])
	}
}

func TestAssignConflictSurfacesError(t *testing.T) {
	s := startTestServer(t)

	ctx := context.Background()
	if _, _, err := s.handleAssignWindow(ctx, nil, AssignWindowInput{WindowID: 10, ZoneIndex: 0}); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if _, _, err := s.handleAssignWindow(ctx, nil, AssignWindowInput{WindowID: 20, ZoneIndex: 0}); err == nil {
		t.Fatal("expected conflict error")
	}

	_, out, err := s.handleAssignWindow(ctx, nil, AssignWindowInput{WindowID: 20, ZoneIndex: 0, Directive: "displace"})
	if err != nil {
		t.Fatalf("displace: %v", err)
	}
	if len(out.Displaced) != 1 || out.Displaced[0] != 10 {
		t.Fatalf("displaced = %v", out.Displaced)
	}
}

func TestCycleAndSwitchTools(t *testing.T) {
	s := startTestServer(t)

	ctx := context.Background()
	_, cycled, err := s.handleCycleWindow(ctx, nil, CycleWindowInput{WindowID: 10})
	if err != nil {
		t.Fatalf("cycle_window: %v", err)
	}
	if cycled.ZoneIndex != 0 {
		t.Fatalf("ZoneIndex = %d, want 0", cycled.ZoneIndex)
	}

	_, switched, err := s.handleSwitchLayout(ctx, nil, SwitchLayoutInput{Layout: "thirds"})
	if err != nil {
		t.Fatalf("switch_layout: %v", err)
	}
	if switched.Layout != "thirds" || switched.Remapped != 1 {
		t.Fatalf("switched = %+v", switched)
	}

	if _, _, err := s.handleSwitchLayout(ctx, nil, SwitchLayoutInput{Layout: "bogus"}); err == nil {
		t.Fatal("expected error for unknown layout")
	}

	_, released, err := s.handleReleaseWindow(ctx, nil, ReleaseWindowInput{WindowID: 10})
	if err != nil {
		t.Fatalf("release_window: %v", err)
	}
	if released.WindowID != 10 {
		t.Fatalf("released = %+v", released)
	}
}
