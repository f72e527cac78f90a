package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload        CommandType = "RELOAD"
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandGetMonitors   CommandType = "GET_MONITORS"
	CommandListLayouts   CommandType = "LIST_LAYOUTS"
	CommandGetZones      CommandType = "GET_ZONES"
	CommandSwitchLayout  CommandType = "SWITCH_LAYOUT"
	CommandAssignZone    CommandType = "ASSIGN_ZONE"
	CommandCycleZone     CommandType = "CYCLE_ZONE"
	CommandReleaseWindow CommandType = "RELEASE_WINDOW"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool   `json:"daemon_running"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Monitors      int    `json:"monitors"`
	Assignments   int    `json:"assignments"`
	DefaultLayout string `json:"default_layout"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Primary      bool   `json:"primary"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ActiveLayout string `json:"active_layout"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// LayoutInfo describes one registered layout.
type LayoutInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Zones   int    `json:"zones"`
	Builtin bool   `json:"builtin"`
}

type LayoutsData struct {
	Layouts       []LayoutInfo `json:"layouts"`
	DefaultLayout string       `json:"default_layout"`
}

// GetZonesPayload selects which monitor to inspect. ActiveMonitor wins over
// MonitorID when set.
type GetZonesPayload struct {
	MonitorID     int  `json:"monitor_id"`
	ActiveMonitor bool `json:"active_monitor,omitempty"`
}

// ZoneInfo is one resolved zone with its occupant, if any.
type ZoneInfo struct {
	Index       int    `json:"index"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	WindowID    uint32 `json:"window_id,omitempty"`
	WindowTitle string `json:"window_title,omitempty"`
}

type ZonesData struct {
	MonitorID int        `json:"monitor_id"`
	Layout    string     `json:"layout"`
	Zones     []ZoneInfo `json:"zones"`
}

type SwitchLayoutPayload struct {
	MonitorID     int    `json:"monitor_id"`
	ActiveMonitor bool   `json:"active_monitor,omitempty"`
	LayoutID      string `json:"layout_id"`
}

type SwitchLayoutData struct {
	MonitorID int      `json:"monitor_id"`
	Layout    string   `json:"layout"`
	Remapped  int      `json:"remapped"`
	Dropped   []uint32 `json:"dropped,omitempty"`
}

// AssignZonePayload assigns a window to a zone of the active layout.
// WindowID 0 targets the currently focused window. Directive is one of "",
// "swap", "displace".
type AssignZonePayload struct {
	WindowID  uint32 `json:"window_id,omitempty"`
	ZoneIndex int    `json:"zone_index"`
	Directive string `json:"directive,omitempty"`
}

type CycleZonePayload struct {
	WindowID  uint32 `json:"window_id,omitempty"`
	Direction string `json:"direction"` // "next" or "previous"
	Directive string `json:"directive,omitempty"`
}

type ReleaseWindowPayload struct {
	WindowID uint32 `json:"window_id,omitempty"`
}

// AssignData describes where a window landed.
type AssignData struct {
	WindowID  uint32   `json:"window_id"`
	MonitorID int      `json:"monitor_id"`
	Layout    string   `json:"layout"`
	ZoneIndex int      `json:"zone_index"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Displaced []uint32 `json:"displaced,omitempty"`
	Swapped   uint32   `json:"swapped,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
