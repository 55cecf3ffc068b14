package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sengled-bridge/internal/device"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/sengled-bridge/internal/sengled"
)

// maxQueryParamLen bounds user-supplied path and query parameters.
const maxQueryParamLen = 64

// defaultColorTempKelvin is presented for tunable-white devices that have
// not yet reported a colour temperature.
const defaultColorTempKelvin = 2000

// handleListDevices returns all devices known to the bridge.
//
// Query parameters:
//   - class: filter by device class (bulb, diffuser)
//   - capability: filter by capability (brightness, color_temperature, color)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var devices []device.Device
	var err error

	if class := r.URL.Query().Get("class"); class != "" {
		if len(class) > maxQueryParamLen || !device.Class(class).Valid() {
			writeBadRequest(w, "invalid device class")
			return
		}
		devices, err = s.registry.GetDevicesByClass(ctx, device.Class(class))
	} else {
		devices, err = s.registry.ListDevices(ctx)
	}
	if err != nil {
		writeInternalError(w, "failed to list devices")
		return
	}

	if capability := r.URL.Query().Get("capability"); capability != "" {
		if len(capability) > maxQueryParamLen {
			writeBadRequest(w, "invalid capability")
			return
		}
		devices = filterByCapability(devices, capability)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// filterByCapability returns the devices reporting the given capability.
func filterByCapability(devices []device.Device, capability string) []device.Device {
	out := make([]device.Device, 0, len(devices))
	for i := range devices {
		for _, c := range devices[i].Capabilities() {
			if c == capability {
				out = append(out, devices[i])
				break
			}
		}
	}
	return out
}

// handleDeviceStats returns aggregate device counts.
func (s *Server) handleDeviceStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.GetStats())
}

// handleRefreshDevices triggers a provider re-discovery.
//
// The refresh runs synchronously; a failed provider listing leaves the
// current device set untouched and returns 503.
func (s *Server) handleRefreshDevices(w http.ResponseWriter, r *http.Request) {
	if err := s.control.RefreshAll(r.Context()); err != nil {
		s.logger.Warn("device refresh failed", "error", err)
		writeServiceUnavailable(w, "device discovery failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "refreshed",
		"count":  s.registry.GetDeviceCount(),
	})
}

// handleGetDevice returns a single device by MAC address.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	if mac == "" || len(mac) > maxQueryParamLen {
		writeBadRequest(w, "invalid MAC address")
		return
	}

	dev, err := s.registry.GetDevice(r.Context(), mac)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// deviceStateResponse is the presentation view of a device's state.
// Colour is expanded into hue/saturation for clients that work in HS space.
type deviceStateResponse struct {
	MAC        string       `json:"mac"`
	Online     bool         `json:"online"`
	State      device.State `json:"state"`
	Hue        *float64     `json:"hue,omitempty"`
	Saturation *float64     `json:"saturation,omitempty"`
}

// handleGetDeviceState returns the current state of a device.
func (s *Server) handleGetDeviceState(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	if mac == "" || len(mac) > maxQueryParamLen {
		writeBadRequest(w, "invalid MAC address")
		return
	}

	dev, err := s.registry.GetDevice(r.Context(), mac)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	resp := deviceStateResponse{
		MAC:    dev.MAC,
		Online: dev.Online,
		State:  dev.State,
	}
	// Tunable-white devices that have never reported a temperature present
	// the warm-end default rather than zero kelvin.
	if dev.SupportsColorTemp && resp.State.ColorTemp == 0 {
		resp.State.ColorTemp = defaultColorTempKelvin
	}
	if dev.State.Color != nil {
		hue, sat := sengled.RGBToHS(*dev.State.Color)
		resp.Hue = &hue
		resp.Saturation = &sat
	}
	writeJSON(w, http.StatusOK, resp)
}

// Command actions accepted by handleDeviceCommand.
const (
	actionOn         = "on"
	actionOff        = "off"
	actionBrightness = "brightness"
	actionColor      = "color"
	actionColorTemp  = "color_temp"
)

// commandRequest is the request body for POST /devices/{mac}/commands.
type commandRequest struct {
	Action     string      `json:"action"`
	Brightness *int        `json:"brightness,omitempty"`
	Color      *device.RGB `json:"color,omitempty"`
	ColorTemp  *int        `json:"color_temp,omitempty"`
}

// commandResponse acknowledges an accepted command.
//
// Commands are fire-and-forget at the MQTT level: 202 means the command was
// published, not that the device applied it. Clients observe the effect via
// the WebSocket state feed.
type commandResponse struct {
	CommandID string `json:"command_id"`
	MAC       string `json:"mac"`
	Action    string `json:"action"`
}

// handleDeviceCommand translates a command request into an MQTT publish to
// the target device.
func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	if mac == "" || len(mac) > maxQueryParamLen {
		writeBadRequest(w, "invalid MAC address")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	bulb, err := s.control.Bulb(mac)
	if err != nil {
		if errors.Is(err, sengled.ErrUnknownDevice) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to resolve device")
		return
	}

	var commandID string
	switch req.Action {
	case actionOn:
		commandID, err = bulb.TurnOn()
	case actionOff:
		commandID, err = bulb.TurnOff()
	case actionBrightness:
		if req.Brightness == nil {
			writeBadRequest(w, "brightness is required for brightness commands")
			return
		}
		commandID, err = bulb.SetBrightness(*req.Brightness)
	case actionColor:
		if req.Color == nil {
			writeBadRequest(w, "color is required for color commands")
			return
		}
		commandID, err = bulb.SetColor(*req.Color)
	case actionColorTemp:
		if req.ColorTemp == nil {
			writeBadRequest(w, "color_temp is required for color_temp commands")
			return
		}
		commandID, err = bulb.SetColorTemperature(*req.ColorTemp)
	default:
		writeBadRequest(w, "unknown action: "+req.Action)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, sengled.ErrUnsupported):
			writeConflict(w, "device does not support this command")
		case errors.Is(err, mqtt.ErrNotConnected):
			writeServiceUnavailable(w, "MQTT broker not connected")
		default:
			s.logger.Error("device command failed",
				"mac", mac,
				"action", req.Action,
				"error", err,
			)
			writeInternalError(w, "command failed")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, commandResponse{
		CommandID: commandID,
		MAC:       mac,
		Action:    req.Action,
	})
}
