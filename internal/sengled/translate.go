package sengled

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

// Sengled Wi-Fi bulbs speak their own units on the wire: brightness and
// colour temperature are percentages (0-100), colour is "r:g:b" in decimal.
// The bridge keeps Home-Assistant-style units internally (brightness 0-255,
// colour temperature in kelvin) and converts only at this boundary.

// BrightnessToDevice converts a 0-255 brightness to the device's 0-100 scale.
func BrightnessToDevice(brightness int) int {
	if brightness < 0 {
		brightness = 0
	}
	if brightness > 255 {
		brightness = 255
	}
	return int(math.Round(float64(brightness) / 255 * 100))
}

// BrightnessFromDevice converts a 0-100 device brightness to the 0-255 scale.
func BrightnessFromDevice(percent int) int {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return int(math.Round(float64(percent) / 100 * 255))
}

// KelvinToDevice converts a colour temperature in kelvin to the device's
// 1-100 scale using the 200-6500 input range the firmware expects.
//
// The mapping is deliberately not clamped: out-of-range kelvin values
// produce out-of-range device values, matching the firmware's own
// behaviour of rejecting rather than silently clamping them.
func KelvinToDevice(kelvin int) int {
	return int(math.Round(translate(float64(kelvin), 200, 6500, 1, 100)))
}

// KelvinFromDevice converts a 0-100 device colour temperature to kelvin
// on the 2000-6500 range.
//
// The reverse ranges are asymmetric with KelvinToDevice; bulbs report on a
// narrower span than they accept. Both mappings mirror the firmware, so a
// set-then-read round trip is close but not exact.
func KelvinFromDevice(percent int) int {
	return int(math.Round(translate(float64(percent), 0, 100, 2000, 6500)))
}

// ColorToDevice renders an RGB colour as the "r:g:b" wire format.
func ColorToDevice(c device.RGB) string {
	return c.String()
}

// ColorFromDevice parses the "r:g:b" wire format into an RGB colour.
//
// Returns ErrColorFormat when the value is not three colon-separated
// integers in 0-255.
func ColorFromDevice(value string) (device.RGB, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return device.RGB{}, fmt.Errorf("%w: %q", ErrColorFormat, value)
	}

	channels := make([]uint8, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 255 {
			return device.RGB{}, fmt.Errorf("%w: %q", ErrColorFormat, value)
		}
		channels[i] = uint8(n)
	}

	return device.RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}

// RGBToHS converts an RGB colour to hue (0-360) and saturation (0-100)
// for API presentation.
func RGBToHS(c device.RGB) (hue, saturation float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	if delta == 0 {
		hue = 0
	} else {
		switch maxC {
		case r:
			hue = 60 * math.Mod((g-b)/delta, 6)
		case g:
			hue = 60 * ((b-r)/delta + 2)
		default:
			hue = 60 * ((r-g)/delta + 4)
		}
		if hue < 0 {
			hue += 360
		}
	}

	if maxC == 0 {
		saturation = 0
	} else {
		saturation = delta / maxC * 100
	}

	return hue, saturation
}

// translate maps value from one linear range onto another.
func translate(value, leftMin, leftMax, rightMin, rightMax float64) float64 {
	leftSpan := leftMax - leftMin
	rightSpan := rightMax - rightMin
	scaled := (value - leftMin) / leftSpan
	return rightMin + scaled*rightSpan
}
