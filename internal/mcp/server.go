// Package mcp exposes the zone layout engine to AI assistants over the
// Model Context Protocol. The server speaks stdio transport and forwards
// every tool call to the running daemon through the IPC client, so it
// never touches the X connection itself.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zonetile/zonetile/internal/ipc"
)

const (
	ServerName    = "zonetile"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for window zone management.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates an MCP server that talks to the running daemon.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "status",
		Description: "Get daemon status: uptime, monitor count, number of zone assignments, and the default layout.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List all registered layouts (builtin and custom) with their zone counts.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_zones",
		Description: "Get the resolved zone rectangles for a monitor's active layout, including which window occupies each zone. Defaults to the active monitor.",
	}, s.handleGetZones)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "assign_window",
		Description: "Assign a window to a zone on its monitor's active layout. Fails if the zone is occupied unless a directive (swap or displace) is given. Defaults to the focused window.",
	}, s.handleAssignWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cycle_window",
		Description: "Move a window to the next or previous zone of its layout, wrapping at the ends. An unassigned window enters zone 0. Defaults to the focused window.",
	}, s.handleCycleWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_layout",
		Description: "Switch a monitor's active layout. Assigned windows are remapped to the zone of the new layout that best overlaps their old zone. Defaults to the active monitor.",
	}, s.handleSwitchLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "release_window",
		Description: "Release a window from its zone so it floats again. Defaults to the focused window.",
	}, s.handleReleaseWindow)
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		DaemonRunning: st.DaemonRunning,
		UptimeSeconds: st.UptimeSeconds,
		Monitors:      st.Monitors,
		Assignments:   st.Assignments,
		DefaultLayout: st.DefaultLayout,
	}, nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	data, err := s.client.ListLayouts()
	if err != nil {
		return nil, ListLayoutsOutput{}, err
	}
	out := ListLayoutsOutput{Layouts: make([]LayoutSummary, 0, len(data.Layouts))}
	for _, l := range data.Layouts {
		out.Layouts = append(out.Layouts, LayoutSummary{
			ID:      l.ID,
			Name:    l.Name,
			Zones:   l.Zones,
			Builtin: l.Builtin,
			Default: l.ID == data.DefaultLayout,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetZones(_ context.Context, _ *mcpsdk.CallToolRequest, args GetZonesInput) (*mcpsdk.CallToolResult, GetZonesOutput, error) {
	monitorID := -1
	if args.MonitorID != nil {
		monitorID = *args.MonitorID
	}
	data, err := s.client.GetZones(monitorID)
	if err != nil {
		return nil, GetZonesOutput{}, err
	}
	out := GetZonesOutput{
		MonitorID: data.MonitorID,
		Layout:    data.Layout,
		Zones:     make([]ZoneSummary, 0, len(data.Zones)),
	}
	for _, z := range data.Zones {
		out.Zones = append(out.Zones, ZoneSummary{
			Index:       z.Index,
			X:           z.X,
			Y:           z.Y,
			Width:       z.Width,
			Height:      z.Height,
			WindowID:    z.WindowID,
			WindowTitle: z.WindowTitle,
		})
	}
	return nil, out, nil
}

func (s *Server) handleAssignWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args AssignWindowInput) (*mcpsdk.CallToolResult, AssignWindowOutput, error) {
	data, err := s.client.AssignZone(args.WindowID, args.ZoneIndex, args.Directive)
	if err != nil {
		return nil, AssignWindowOutput{}, err
	}
	return nil, assignOutput(data), nil
}

func (s *Server) handleCycleWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CycleWindowInput) (*mcpsdk.CallToolResult, AssignWindowOutput, error) {
	direction := args.Direction
	if direction == "" {
		direction = "next"
	}
	data, err := s.client.CycleZone(args.WindowID, direction, args.Directive)
	if err != nil {
		return nil, AssignWindowOutput{}, err
	}
	return nil, assignOutput(data), nil
}

func (s *Server) handleSwitchLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchLayoutInput) (*mcpsdk.CallToolResult, SwitchLayoutOutput, error) {
	monitorID := -1
	if args.MonitorID != nil {
		monitorID = *args.MonitorID
	}
	data, err := s.client.SwitchLayout(monitorID, args.Layout)
	if err != nil {
		return nil, SwitchLayoutOutput{}, err
	}
	return nil, SwitchLayoutOutput{
		MonitorID: data.MonitorID,
		Layout:    data.Layout,
		Remapped:  data.Remapped,
		Dropped:   data.Dropped,
	}, nil
}

func (s *Server) handleReleaseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ReleaseWindowInput) (*mcpsdk.CallToolResult, ReleaseWindowOutput, error) {
	if err := s.client.ReleaseWindow(args.WindowID); err != nil {
		return nil, ReleaseWindowOutput{}, err
	}
	return nil, ReleaseWindowOutput{WindowID: args.WindowID}, nil
}

func assignOutput(data *ipc.AssignData) AssignWindowOutput {
	return AssignWindowOutput{
		WindowID:  data.WindowID,
		MonitorID: data.MonitorID,
		Layout:    data.Layout,
		ZoneIndex: data.ZoneIndex,
		X:         data.X,
		Y:         data.Y,
		Width:     data.Width,
		Height:    data.Height,
		Displaced: data.Displaced,
		Swapped:   data.Swapped,
	}
}
