package device

import (
	"fmt"
	"time"
)

// Class identifies the kind of Sengled Wi-Fi device.
type Class string

// Device classes.
const (
	// ClassBulb is a Wi-Fi light bulb (white, tunable white, or colour).
	ClassBulb Class = "bulb"

	// ClassDiffuser is a Wi-Fi aroma diffuser with an integrated light.
	ClassDiffuser Class = "diffuser"
)

// Valid reports whether the class is a recognised device class.
func (c Class) Valid() bool {
	return c == ClassBulb || c == ClassDiffuser
}

// Capability strings reported by device providers.
const (
	CapabilityBrightness = "brightness"
	CapabilityColorTemp  = "color_temperature"
	CapabilityColor      = "color"
)

// Colour modes a device can report. A colour-capable bulb is in exactly one
// mode at a time; the other channel's value is stale until the mode flips back.
const (
	ColorModeRGB       = "rgb"
	ColorModeColorTemp = "ct"
)

// RGB is a 24-bit colour value.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the colour in "r:g:b" decimal form.
func (c RGB) String() string {
	return fmt.Sprintf("%d:%d:%d", c.R, c.G, c.B)
}

// DiffuserState holds the diffuser-specific portion of device state.
// Bulbs leave this nil.
type DiffuserState struct {
	// Mode is the active atomisation mode reported by the device.
	Mode string `json:"mode,omitempty"`

	// Intensity is the mist output level (device scale 0-100).
	Intensity int `json:"intensity,omitempty"`

	// Sleep reports whether the atomizer's sleep schedule is active
	// (wire value, "1" when sleeping).
	Sleep string `json:"sleep,omitempty"`

	// WaterState is the reservoir level flag, "1" when the tank is low
	// or empty.
	WaterState string `json:"water_state,omitempty"`
}

// State is the last known state of a device.
//
// Brightness uses the 0-255 scale throughout the bridge; conversion to the
// device's 0-100 scale happens only at the MQTT boundary. ColorTemp is in
// kelvin.
type State struct {
	// On is the power state.
	On bool `json:"on"`

	// Brightness is the light level, 0-255.
	Brightness int `json:"brightness"`

	// ColorTemp is the white colour temperature in kelvin. Zero means the
	// device has never reported one.
	ColorTemp int `json:"color_temp,omitempty"`

	// Color is the RGB colour. Nil means the device has never reported one.
	Color *RGB `json:"color,omitempty"`

	// ColorMode is ColorModeRGB or ColorModeColorTemp, empty for devices
	// without colour support.
	ColorMode string `json:"color_mode,omitempty"`

	// RSSI is the last reported Wi-Fi signal strength in dBm.
	RSSI int `json:"rssi,omitempty"`

	// Diffuser holds diffuser-specific state; nil for bulbs.
	Diffuser *DiffuserState `json:"diffuser,omitempty"`

	// UpdatedAt is when this state was last changed (UTC).
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy returns an independent copy of the state.
func (s State) DeepCopy() State {
	out := s
	if s.Color != nil {
		c := *s.Color
		out.Color = &c
	}
	if s.Diffuser != nil {
		d := *s.Diffuser
		out.Diffuser = &d
	}
	return out
}

// Device is a Sengled Wi-Fi device known to the bridge.
//
// Devices are keyed by MAC address, which is how the Sengled cloud, the
// add-on API, and the MQTT topic hierarchy all identify them.
type Device struct {
	// MAC is the device MAC address, e.g. "B0:CE:18:10:A4:BB".
	MAC string `json:"mac"`

	// Name is the human-readable name from the Sengled account.
	Name string `json:"name"`

	// Model is the Sengled model code, e.g. "W21-N13".
	Model string `json:"model"`

	// Class is the device class (bulb or diffuser).
	Class Class `json:"class"`

	// Capability flags derived from the provider's device listing.
	SupportsBrightness bool `json:"supports_brightness"`
	SupportsColorTemp  bool `json:"supports_color_temp"`
	SupportsColor      bool `json:"supports_color"`

	// State is the last known device state.
	State State `json:"state"`

	// Online reports device reachability as last seen by the provider.
	Online bool `json:"online"`

	// FirmwareVersion is the reported firmware version, if any.
	FirmwareVersion string `json:"firmware_version,omitempty"`

	// CreatedAt is when the device was first recorded (UTC).
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the device record was last modified (UTC).
	UpdatedAt time.Time `json:"updated_at"`
}

// Capabilities returns the device's capability strings in a stable order.
func (d *Device) Capabilities() []string {
	caps := make([]string, 0, 3)
	if d.SupportsBrightness {
		caps = append(caps, CapabilityBrightness)
	}
	if d.SupportsColorTemp {
		caps = append(caps, CapabilityColorTemp)
	}
	if d.SupportsColor {
		caps = append(caps, CapabilityColor)
	}
	return caps
}

// DeepCopy creates a complete independent copy of the Device.
// The registry hands out copies so callers can never mutate the cache
// through a returned pointer. This is essential for cache isolation.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}
	out := *d
	out.State = d.State.DeepCopy()
	return &out
}

// Snapshot is a device description as returned by a provider (the local
// add-on API or the Sengled cloud). It carries identity and capabilities
// but no bridge-side state.
type Snapshot struct {
	// MAC is the device MAC address.
	MAC string `json:"mac"`

	// Name is the account-assigned device name.
	Name string `json:"name"`

	// Model is the Sengled model code.
	Model string `json:"model"`

	// Class is the device class.
	Class Class `json:"class"`

	// Capabilities lists the supported capability strings.
	Capabilities []string `json:"capabilities"`

	// Attributes are the raw provider attributes, unconverted.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Online reports provider-side reachability.
	Online bool `json:"online"`

	// FirmwareVersion is the reported firmware version, if any.
	FirmwareVersion string `json:"firmware_version,omitempty"`
}

// Device converts the snapshot into a Device with capability flags set.
// State is zero; the caller merges any existing state afterwards.
func (s Snapshot) Device() *Device {
	d := &Device{
		MAC:             s.MAC,
		Name:            s.Name,
		Model:           s.Model,
		Class:           s.Class,
		Online:          s.Online,
		FirmwareVersion: s.FirmwareVersion,
	}
	if d.Class == "" {
		d.Class = ClassBulb
	}
	for _, capability := range s.Capabilities {
		switch capability {
		case CapabilityBrightness:
			d.SupportsBrightness = true
		case CapabilityColorTemp:
			d.SupportsColorTemp = true
		case CapabilityColor:
			d.SupportsColor = true
		}
	}
	return d
}
