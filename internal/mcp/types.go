package mcp

// StatusInput is the input for the status tool.
type StatusInput struct{}

// StatusOutput is the output for the status tool.
type StatusOutput struct {
	DaemonRunning bool   `json:"daemon_running"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Monitors      int    `json:"monitors"`
	Assignments   int    `json:"assignments"`
	DefaultLayout string `json:"default_layout"`
}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// LayoutSummary describes one registered layout.
type LayoutSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Zones   int    `json:"zones"`
	Builtin bool   `json:"builtin"`
	Default bool   `json:"default"`
}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []LayoutSummary `json:"layouts"`
}

// GetZonesInput is the input for the get_zones tool.
type GetZonesInput struct {
	MonitorID *int `json:"monitor_id,omitempty" jsonschema:"Monitor to inspect. Omit to use the monitor with the focused window or pointer."`
}

// ZoneSummary describes one resolved zone rectangle and its occupant.
type ZoneSummary struct {
	Index       int    `json:"index"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	WindowID    uint32 `json:"window_id,omitempty"`
	WindowTitle string `json:"window_title,omitempty"`
}

// GetZonesOutput is the output for the get_zones tool.
type GetZonesOutput struct {
	MonitorID int           `json:"monitor_id"`
	Layout    string        `json:"layout"`
	Zones     []ZoneSummary `json:"zones"`
}

// AssignWindowInput is the input for the assign_window tool.
type AssignWindowInput struct {
	ZoneIndex int    `json:"zone_index" jsonschema:"required,Zone index within the monitor's active layout"`
	WindowID  uint32 `json:"window_id,omitempty" jsonschema:"Window to assign. Omit to use the focused window."`
	Directive string `json:"directive,omitempty" jsonschema:"How to resolve an occupied zone: swap or displace. Omit to fail on conflict."`
}

// AssignWindowOutput is the output for the assign_window tool.
type AssignWindowOutput struct {
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

// CycleWindowInput is the input for the cycle_window tool.
type CycleWindowInput struct {
	WindowID  uint32 `json:"window_id,omitempty" jsonschema:"Window to cycle. Omit to use the focused window."`
	Direction string `json:"direction,omitempty" jsonschema:"Cycle direction: next or prev (default: next)"`
	Directive string `json:"directive,omitempty" jsonschema:"How to resolve an occupied zone: swap or displace. Omit to fail on conflict."`
}

// SwitchLayoutInput is the input for the switch_layout tool.
type SwitchLayoutInput struct {
	Layout    string `json:"layout" jsonschema:"required,Layout ID to activate"`
	MonitorID *int   `json:"monitor_id,omitempty" jsonschema:"Monitor to switch. Omit to use the monitor with the focused window or pointer."`
}

// SwitchLayoutOutput is the output for the switch_layout tool.
type SwitchLayoutOutput struct {
	MonitorID int      `json:"monitor_id"`
	Layout    string   `json:"layout"`
	Remapped  int      `json:"remapped"`
	Dropped   []uint32 `json:"dropped,omitempty"`
}

// ReleaseWindowInput is the input for the release_window tool.
type ReleaseWindowInput struct {
	WindowID uint32 `json:"window_id,omitempty" jsonschema:"Window to release from its zone. Omit to use the focused window."`
}

// ReleaseWindowOutput is the output for the release_window tool.
type ReleaseWindowOutput struct {
	WindowID uint32 `json:"window_id"`
}
