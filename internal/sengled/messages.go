package sengled

import (
	"encoding/json"
	"fmt"
)

// Attribute kinds used on the wifielement topics. Commands publish a
// subset (switch, brightness, color, colorTemperature); status messages
// additionally report colorMode and the diffuser attributes.
const (
	AttrSwitch           = "switch"
	AttrBrightness       = "brightness"
	AttrColor            = "color"
	AttrColorMode        = "colorMode"
	AttrColorTemperature = "colorTemperature"
	AttrRSSI             = "deviceRssi"
	AttrOnline           = "online"
	AttrVersion          = "version"
	AttrAtomizerSwitch   = "atomizerSwitch"
	AttrAtomizerMode     = "atomizerMode"
	AttrAtomizerSleep    = "atomizerSleep"
	AttrWaterState       = "waterState"
)

// Switch values on the wire.
const (
	SwitchOn  = "1"
	SwitchOff = "0"
)

// Sengled colorMode wire values.
const (
	wireColorModeRGB = "1"
	wireColorModeCT  = "2"
)

// Attribute is one element of a wifielement payload. Both commands and
// status reports are JSON arrays of these objects.
//
//	[{"dn":"B0:CE:18:10:A4:BB","type":"switch","value":"1","time":1755993600000}]
type Attribute struct {
	// DN is the device MAC address ("device name" on the wire).
	DN string `json:"dn,omitempty"`

	// Type is the attribute kind (switch, brightness, color, ...).
	Type string `json:"type"`

	// Value is the attribute value, always a string on the wire.
	Value string `json:"value"`

	// Time is the epoch timestamp in milliseconds. Commands stamp it;
	// some status reports omit it.
	Time int64 `json:"time,omitempty"`
}

// ParseStatus decodes a status payload from a wifielement/{mac}/status
// message.
//
// Entries without a type are dropped rather than treated as errors; the
// bulbs occasionally emit padding objects.
//
// Parameters:
//   - payload: Raw MQTT message payload
//
// Returns:
//   - []Attribute: The well-formed attributes in payload order
//   - error: ErrStatusFormat when the payload is not a JSON array
func ParseStatus(payload []byte) ([]Attribute, error) {
	var raw []Attribute
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatusFormat, err)
	}

	attrs := make([]Attribute, 0, len(raw))
	for _, attr := range raw {
		if attr.Type == "" {
			continue
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}
