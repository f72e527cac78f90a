package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/zonetile/zonetile/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}
	return nil
}

// Reload asks the daemon to reload its config and custom layouts.
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// ListLayouts retrieves the registered layouts.
func (c *Client) ListLayouts() (*LayoutsData, error) {
	var data LayoutsData
	if err := c.call(CommandListLayouts, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetZones retrieves the resolved zones of a monitor. monitorID < 0 selects
// the active monitor.
func (c *Client) GetZones(monitorID int) (*ZonesData, error) {
	payload := GetZonesPayload{MonitorID: monitorID}
	if monitorID < 0 {
		payload = GetZonesPayload{ActiveMonitor: true}
	}

	var data ZonesData
	if err := c.call(CommandGetZones, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SwitchLayout changes the active layout on a monitor. monitorID < 0 selects
// the active monitor.
func (c *Client) SwitchLayout(monitorID int, layoutID string) (*SwitchLayoutData, error) {
	payload := SwitchLayoutPayload{MonitorID: monitorID, LayoutID: layoutID}
	if monitorID < 0 {
		payload = SwitchLayoutPayload{ActiveMonitor: true, LayoutID: layoutID}
	}

	var data SwitchLayoutData
	if err := c.call(CommandSwitchLayout, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// AssignZone assigns a window to a zone. windowID 0 targets the focused
// window.
func (c *Client) AssignZone(windowID uint32, zoneIndex int, directive string) (*AssignData, error) {
	var data AssignData
	err := c.call(CommandAssignZone, AssignZonePayload{
		WindowID:  windowID,
		ZoneIndex: zoneIndex,
		Directive: directive,
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// CycleZone moves a window to the next or previous zone.
func (c *Client) CycleZone(windowID uint32, direction, directive string) (*AssignData, error) {
	var data AssignData
	err := c.call(CommandCycleZone, CycleZonePayload{
		WindowID:  windowID,
		Direction: direction,
		Directive: directive,
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// ReleaseWindow removes a window's zone assignment.
func (c *Client) ReleaseWindow(windowID uint32) error {
	return c.call(CommandReleaseWindow, ReleaseWindowPayload{WindowID: windowID}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
