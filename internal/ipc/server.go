package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/zonetile/zonetile/internal/conflict"
	"github.com/zonetile/zonetile/internal/engine"
	"github.com/zonetile/zonetile/internal/platform"
	"github.com/zonetile/zonetile/internal/runtimepath"
	"github.com/zonetile/zonetile/internal/zone"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	eng          *engine.Engine
	backend      platform.Backend
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(eng *engine.Engine, backend platform.Backend, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		eng:        eng,
		backend:    backend,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandListLayouts:
		return s.handleListLayouts()
	case CommandGetZones:
		return s.handleGetZones(req.Payload)
	case CommandSwitchLayout:
		return s.handleSwitchLayout(req.Payload)
	case CommandAssignZone:
		return s.handleAssignZone(req.Payload)
	case CommandCycleZone:
		return s.handleCycleZone(req.Payload)
	case CommandReleaseWindow:
		return s.handleReleaseWindow(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload asks the daemon to reload config and custom layouts.
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	monitors := 0
	if displays, err := s.backend.Displays(); err == nil {
		monitors = len(displays)
	}

	status := StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Monitors:      monitors,
		Assignments:   len(s.eng.Assignments()),
		DefaultLayout: s.eng.DefaultLayout(),
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetMonitors() *Response {
	displays, err := s.backend.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	monitorInfos := make([]MonitorInfo, len(displays))
	for i, d := range displays {
		monitorInfos[i] = MonitorInfo{
			ID:           d.ID,
			Name:         d.Name,
			Primary:      d.Primary,
			X:            d.Bounds.X,
			Y:            d.Bounds.Y,
			Width:        d.Bounds.Width,
			Height:       d.Bounds.Height,
			ActiveLayout: s.eng.ActiveLayout(d.ID),
		}
	}

	resp, _ := NewOKResponse(MonitorsData{Monitors: monitorInfos})
	return resp
}

func (s *Server) handleListLayouts() *Response {
	cat := s.eng.Catalog()
	infos := make([]LayoutInfo, 0, cat.Len())
	for l := range cat.All() {
		infos = append(infos, LayoutInfo{
			ID:      l.ID,
			Name:    l.Name,
			Zones:   len(l.Zones),
			Builtin: cat.IsBuiltin(l.ID),
		})
	}

	resp, _ := NewOKResponse(LayoutsData{
		Layouts:       infos,
		DefaultLayout: s.eng.DefaultLayout(),
	})
	return resp
}

func (s *Server) handleGetZones(payload json.RawMessage) *Response {
	var p GetZonesPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid zones payload: %v", err))
		}
	} else {
		p.ActiveMonitor = true
	}

	monitorID := p.MonitorID
	if p.ActiveMonitor {
		display, err := s.backend.ActiveDisplay()
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to get active monitor: %v", err))
		}
		monitorID = display.ID
	}

	layoutID, rects, err := s.eng.Zones(monitorID)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to resolve zones: %v", err))
	}

	titles := make(map[platform.WindowID]string)
	if windows, err := s.backend.ListWindows(); err == nil {
		for _, w := range windows {
			titles[w.ID] = w.Title
		}
	}

	occupants := make(map[int]platform.WindowID)
	for _, entry := range s.eng.Assignments() {
		if entry.Zone.Monitor == monitorID && entry.Zone.Layout == layoutID {
			occupants[entry.Zone.Index] = entry.Window
		}
	}

	l, err := s.eng.Catalog().Get(layoutID)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to resolve zones: %v", err))
	}

	zones := make([]ZoneInfo, len(rects))
	for i, rect := range rects {
		index := l.Zones[i].Index
		zi := ZoneInfo{
			Index:  index,
			X:      rect.X,
			Y:      rect.Y,
			Width:  rect.Width,
			Height: rect.Height,
		}
		if win, ok := occupants[index]; ok {
			zi.WindowID = uint32(win)
			zi.WindowTitle = titles[win]
		}
		zones[i] = zi
	}

	resp, _ := NewOKResponse(ZonesData{
		MonitorID: monitorID,
		Layout:    layoutID,
		Zones:     zones,
	})
	return resp
}

func (s *Server) handleSwitchLayout(payload json.RawMessage) *Response {
	var p SwitchLayoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid switch payload: %v", err))
	}
	if p.LayoutID == "" {
		return NewErrorResponse("layout_id is required")
	}

	monitorID := p.MonitorID
	if p.ActiveMonitor {
		display, err := s.backend.ActiveDisplay()
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to get active monitor: %v", err))
		}
		monitorID = display.ID
	}

	res, err := s.eng.SwitchLayout(monitorID, p.LayoutID)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to switch layout: %v", err))
	}

	data := SwitchLayoutData{
		MonitorID: monitorID,
		Layout:    p.LayoutID,
		Remapped:  len(res.Report.Remapped),
	}
	for _, win := range res.Report.Dropped {
		data.Dropped = append(data.Dropped, uint32(win))
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleAssignZone(payload json.RawMessage) *Response {
	var p AssignZonePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid assign payload: %v", err))
	}

	win, err := s.resolveWindow(p.WindowID)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	directive, err := parseDirective(p.Directive)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	res, err := s.eng.AssignWindowToZone(win, p.ZoneIndex, directive)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to assign zone: %v", err))
	}

	resp, _ := NewOKResponse(assignData(res))
	return resp
}

func (s *Server) handleCycleZone(payload json.RawMessage) *Response {
	var p CycleZonePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid cycle payload: %v", err))
	}

	win, err := s.resolveWindow(p.WindowID)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	directive, err := parseDirective(p.Directive)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	var dir engine.Direction
	switch p.Direction {
	case "", "next":
		dir = engine.Next
	case "previous", "prev":
		dir = engine.Previous
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown direction: %s", p.Direction))
	}

	res, err := s.eng.CycleZone(win, dir, directive)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to cycle zone: %v", err))
	}

	resp, _ := NewOKResponse(assignData(res))
	return resp
}

func (s *Server) handleReleaseWindow(payload json.RawMessage) *Response {
	var p ReleaseWindowPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid release payload: %v", err))
		}
	}

	win, err := s.resolveWindow(p.WindowID)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	s.eng.ReleaseWindow(win)
	resp, _ := NewOKResponse(nil)
	return resp
}

// resolveWindow maps window id 0 to the focused window.
func (s *Server) resolveWindow(id uint32) (platform.WindowID, error) {
	if id != 0 {
		return platform.WindowID(id), nil
	}
	w, err := s.backend.ActiveWindow()
	if err != nil {
		return 0, fmt.Errorf("failed to get active window: %v", err)
	}
	return w.ID, nil
}

func parseDirective(s string) (conflict.Directive, error) {
	switch s {
	case "":
		return conflict.DirectiveNone, nil
	case "swap":
		return conflict.DirectiveSwap, nil
	case "displace":
		return conflict.DirectiveDisplace, nil
	default:
		return conflict.DirectiveNone, fmt.Errorf("unknown directive: %s", s)
	}
}

func assignData(res engine.Result) AssignData {
	data := AssignData{
		WindowID:  uint32(res.Window),
		MonitorID: res.Zone.Monitor,
		Layout:    res.Zone.Layout,
		ZoneIndex: res.Zone.Index,
		X:         res.Target.X,
		Y:         res.Target.Y,
		Width:     res.Target.Width,
		Height:    res.Target.Height,
	}
	for _, win := range res.Report.Released {
		data.Displaced = append(data.Displaced, uint32(win))
	}
	for _, rm := range res.Report.Remapped {
		if rm.From == (zone.Ref{Monitor: res.Zone.Monitor, Layout: res.Zone.Layout, Index: res.Zone.Index}) {
			data.Swapped = uint32(rm.Window)
		}
	}
	return data
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
