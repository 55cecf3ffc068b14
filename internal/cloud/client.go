package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sengled-bridge/internal/device"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
)

const (
	defaultTimeout = 15 * time.Second

	// authPath is the cross-region login endpoint on the ucenter host.
	authPath = "/user/app/customer/v2/AuthenCross.json"

	// defaultDeviceBaseURL hosts the Wi-Fi device listing for life2 accounts.
	defaultDeviceBaseURL = "https://life2.cloud.sengled.com"

	// devicePath lists all Wi-Fi devices for the authenticated session.
	devicePath = "/life2/device/list.json"
)

// Client talks to the Sengled cloud for installations without the local
// add-on. It authenticates with account credentials, holds the session
// cookie, and lists the account's Wi-Fi devices.
//
// Live state still flows over MQTT; the cloud is only the device provider.
type Client struct {
	authBaseURL   string
	deviceBaseURL string
	username      string
	password      string
	httpClient    *http.Client

	mu        sync.Mutex
	sessionID string
}

// NewClient creates a Sengled cloud client from configuration.
//
// Parameters:
//   - cfg: Cloud settings (base URL, credentials, timeout in seconds)
//
// Returns:
//   - *Client: Client ready for use; Login is called lazily on first request
func NewClient(cfg config.CloudConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		authBaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		deviceBaseURL: defaultDeviceBaseURL,
		username:      cfg.Username,
		password:      cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Login authenticates against the Sengled cloud and stores the session ID.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - error: ErrAuthFailed when credentials are rejected, ErrFetchFailed on
//     transport errors
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"uuid":        uuid.NewString(),
		"user":        c.username,
		"pwd":         c.password,
		"osType":      "android",
		"productCode": "life",
		"appCode":     "life",
	})
	if err != nil {
		return fmt.Errorf("%w: encoding login request: %w", ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBaseURL+authPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building login request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrAuthFailed, resp.StatusCode)
	}

	var result struct {
		JSessionID string `json:"jsessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: decoding login response: %w", ErrBadResponse, err)
	}
	if result.JSessionID == "" {
		return fmt.Errorf("%w: no session returned", ErrAuthFailed)
	}

	c.mu.Lock()
	c.sessionID = result.JSessionID
	c.mu.Unlock()
	return nil
}

// session returns the current session ID, logging in first if needed.
func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.sessionID
	c.mu.Unlock()

	if id != "" {
		return id, nil
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID, nil
}

// deviceListResponse is the cloud's device listing payload.
type deviceListResponse struct {
	DeviceList []struct {
		DeviceUUID    string `json:"deviceUuid"`
		Category      string `json:"category"`
		TypeCode      string `json:"typeCode"`
		AttributeList []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"attributeList"`
	} `json:"deviceList"`
}

// ListDevices fetches all Wi-Fi devices on the account.
//
// An expired session is retried once with a fresh login before the error
// is returned.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - []device.Snapshot: Devices sorted by MAC (may be empty)
//   - error: ErrAuthFailed, ErrFetchFailed, or ErrBadResponse
func (c *Client) ListDevices(ctx context.Context) ([]device.Snapshot, error) {
	snapshots, err := c.listDevices(ctx)
	if err == nil {
		return snapshots, nil
	}

	// One relogin attempt for expired sessions
	c.mu.Lock()
	c.sessionID = ""
	c.mu.Unlock()
	if loginErr := c.Login(ctx); loginErr != nil {
		return nil, loginErr
	}
	return c.listDevices(ctx)
}

func (c *Client) listDevices(ctx context.Context) ([]device.Snapshot, error) {
	sessionID, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.deviceBaseURL+devicePath, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "JSESSIONID", Value: sessionID})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: session rejected", ErrAuthFailed)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	var result deviceListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding device list: %w", ErrBadResponse, err)
	}

	snapshots := make([]device.Snapshot, 0, len(result.DeviceList))
	for _, entry := range result.DeviceList {
		if entry.DeviceUUID == "" {
			continue
		}

		attrs := make(map[string]string, len(entry.AttributeList))
		for _, attr := range entry.AttributeList {
			attrs[attr.Name] = attr.Value
		}

		snap := device.Snapshot{
			MAC:             entry.DeviceUUID,
			Name:            attrs["name"],
			Model:           entry.TypeCode,
			Class:           classFromCategory(entry.Category, attrs),
			Capabilities:    capabilitiesFromAttrs(attrs),
			Attributes:      attrs,
			Online:          attrs["onlineStatus"] == "1",
			FirmwareVersion: attrs["version"],
		}
		if snap.Name == "" {
			snap.Name = entry.DeviceUUID
		}
		if snap.Model == "" {
			snap.Model = attrs["typeCode"]
		}
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].MAC < snapshots[j].MAC
	})
	return snapshots, nil
}

// GetDevice returns a single device from the account listing.
//
// The cloud has no per-device endpoint for Wi-Fi devices, so this filters
// the full listing.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - mac: Device MAC address
//
// Returns:
//   - device.Snapshot: The matching device
//   - error: device.ErrDeviceNotFound when absent, otherwise listing errors
func (c *Client) GetDevice(ctx context.Context, mac string) (device.Snapshot, error) {
	snapshots, err := c.ListDevices(ctx)
	if err != nil {
		return device.Snapshot{}, err
	}

	for _, snap := range snapshots {
		if strings.EqualFold(snap.MAC, mac) {
			return snap, nil
		}
	}
	return device.Snapshot{}, device.ErrDeviceNotFound
}

// capabilitiesFromAttrs derives capability strings from the cloud's
// comma-separated supportAttributes value.
func capabilitiesFromAttrs(attrs map[string]string) []string {
	support := attrs["supportAttributes"]
	if support == "" {
		return nil
	}

	var caps []string
	for _, name := range strings.Split(support, ",") {
		switch strings.TrimSpace(name) {
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

// classFromCategory maps the cloud's device category to a device class.
func classFromCategory(category string, attrs map[string]string) device.Class {
	if strings.EqualFold(category, "diffuser") {
		return device.ClassDiffuser
	}
	if _, ok := attrs["atomizerSwitch"]; ok {
		return device.ClassDiffuser
	}
	return device.ClassBulb
}
