package addon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/sengled-bridge/internal/device"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
)

const defaultTimeout = 10 * time.Second

// Client queries the local Sengled add-on HTTP API for device listings.
//
// The add-on intercepts the bulbs' cloud traffic on the LAN and exposes what
// it learns over a small REST surface:
//
//	GET /api/devices       - all known devices with capabilities and attributes
//	GET /api/device/{mac}  - one device's current attributes
//
// The add-on is the source of truth for device identity; live state flows
// over MQTT and only falls back to these endpoints for polling.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an add-on API client from configuration.
//
// Parameters:
//   - cfg: Add-on settings (base URL and per-request timeout in seconds)
//
// Returns:
//   - *Client: Client ready for use
func NewClient(cfg config.AddonConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// devicesResponse is the add-on's /api/devices payload.
type devicesResponse struct {
	Success bool                       `json:"success"`
	Devices map[string]deviceListEntry `json:"devices"`
}

type deviceListEntry struct {
	Capabilities []string       `json:"capabilities"`
	Attributes   map[string]any `json:"attributes"`
}

// deviceResponse is the add-on's /api/device/{mac} payload.
type deviceResponse struct {
	Success bool `json:"success"`
	Device  struct {
		Attributes map[string]any `json:"attributes"`
	} `json:"device"`
}

// ListDevices fetches all devices known to the add-on.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - []device.Snapshot: Devices sorted by MAC (may be empty)
//   - error: ErrFetchFailed on transport errors, ErrBadResponse on
//     unexpected payloads
func (c *Client) ListDevices(ctx context.Context) ([]device.Snapshot, error) {
	var resp devicesResponse
	if err := c.getJSON(ctx, "/api/devices", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: add-on reported failure", ErrBadResponse)
	}

	snapshots := make([]device.Snapshot, 0, len(resp.Devices))
	for mac, entry := range resp.Devices {
		if mac == "" {
			continue
		}
		snapshots = append(snapshots, buildSnapshot(mac, entry.Capabilities, entry.Attributes))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].MAC < snapshots[j].MAC
	})
	return snapshots, nil
}

// GetDevice fetches the current attributes of a single device.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - mac: Device MAC address
//
// Returns:
//   - device.Snapshot: The device's identity and raw attributes
//   - error: ErrFetchFailed on transport errors, ErrBadResponse on
//     unexpected payloads
func (c *Client) GetDevice(ctx context.Context, mac string) (device.Snapshot, error) {
	if mac == "" {
		return device.Snapshot{}, fmt.Errorf("%w: mac is required", ErrBadResponse)
	}

	var resp deviceResponse
	path := "/api/device/" + url.PathEscape(mac)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return device.Snapshot{}, err
	}
	if !resp.Success {
		return device.Snapshot{}, fmt.Errorf("%w: add-on reported failure for %s", ErrBadResponse, mac)
	}

	// The single-device endpoint omits the capability list; callers that
	// need it use the listing. Attributes still drive class detection.
	return buildSnapshot(mac, nil, resp.Device.Attributes), nil
}

// getJSON performs a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d from %s", ErrFetchFailed, resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrBadResponse, err)
	}
	return nil
}

// buildSnapshot converts an add-on device entry into a device.Snapshot.
func buildSnapshot(mac string, capabilities []string, rawAttrs map[string]any) device.Snapshot {
	attrs := make(map[string]string, len(rawAttrs))
	for name, value := range rawAttrs {
		attrs[name] = attrString(value)
	}

	snap := device.Snapshot{
		MAC:             mac,
		Name:            attrs["name"],
		Model:           attrs["typeCode"],
		Class:           detectClass(attrs),
		Capabilities:    mapCapabilities(capabilities),
		Attributes:      attrs,
		Online:          isOnline(attrs),
		FirmwareVersion: attrs["version"],
	}
	if snap.Name == "" {
		snap.Name = mac
	}
	if snap.Model == "" {
		snap.Model = attrs["productCode"]
	}
	return snap
}

// mapCapabilities translates the add-on's wire capability names into the
// registry's capability strings. Unknown names are dropped.
func mapCapabilities(wire []string) []string {
	caps := make([]string, 0, len(wire))
	for _, name := range wire {
		switch name {
		case "brightness":
			caps = append(caps, device.CapabilityBrightness)
		case "colorTemperature":
			caps = append(caps, device.CapabilityColorTemp)
		case "color":
			caps = append(caps, device.CapabilityColor)
		}
	}
	return caps
}

// detectClass classifies a device from its attributes. Diffusers expose the
// atomizer attribute set; everything else is a bulb.
func detectClass(attrs map[string]string) device.Class {
	if _, ok := attrs["atomizerSwitch"]; ok {
		return device.ClassDiffuser
	}
	return device.ClassBulb
}

// isOnline interprets the add-on's online attribute, defaulting to true
// when absent (the add-on only lists devices it has seen).
func isOnline(attrs map[string]string) bool {
	value, ok := attrs["online"]
	if !ok {
		return true
	}
	return value == "1" || strings.EqualFold(value, "true")
}

// attrString renders an add-on attribute value as a string. The add-on
// mixes strings and numbers in its attribute maps.
func attrString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
