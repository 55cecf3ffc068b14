package sengled

import (
	"errors"
	"math"
	"testing"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

// =============================================================================
// Brightness
// =============================================================================

func TestBrightnessToDevice(t *testing.T) {
	tests := []struct {
		brightness int
		want       int
	}{
		{0, 0},
		{1, 0},
		{128, 50},
		{255, 100},
		{-10, 0},   // clamped
		{999, 100}, // clamped
	}

	for _, tt := range tests {
		if got := BrightnessToDevice(tt.brightness); got != tt.want {
			t.Errorf("BrightnessToDevice(%d) = %d, want %d", tt.brightness, got, tt.want)
		}
	}
}

func TestBrightnessFromDevice(t *testing.T) {
	tests := []struct {
		percent int
		want    int
	}{
		{0, 0},
		{50, 128},
		{100, 255},
		{-5, 0},    // clamped
		{150, 255}, // clamped
	}

	for _, tt := range tests {
		if got := BrightnessFromDevice(tt.percent); got != tt.want {
			t.Errorf("BrightnessFromDevice(%d) = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

func TestBrightnessRoundTrip(t *testing.T) {
	// The 0-255 -> 0-100 -> 0-255 round trip loses at most one step of
	// the coarser scale.
	for b := 0; b <= 255; b++ {
		got := BrightnessFromDevice(BrightnessToDevice(b))
		if diff := got - b; diff < -2 || diff > 2 {
			t.Errorf("round trip of %d drifted to %d", b, got)
		}
	}
}

// =============================================================================
// Colour temperature
// =============================================================================

func TestKelvinToDevice(t *testing.T) {
	tests := []struct {
		kelvin int
		want   int
	}{
		{200, 1},
		{6500, 100},
		{2700, 40},
		{4000, 61},
	}

	for _, tt := range tests {
		if got := KelvinToDevice(tt.kelvin); got != tt.want {
			t.Errorf("KelvinToDevice(%d) = %d, want %d", tt.kelvin, got, tt.want)
		}
	}
}

func TestKelvinToDevice_NotClamped(t *testing.T) {
	if got := KelvinToDevice(10000); got <= 100 {
		t.Errorf("KelvinToDevice(10000) = %d, want > 100", got)
	}
	if got := KelvinToDevice(0); got >= 1 {
		t.Errorf("KelvinToDevice(0) = %d, want < 1", got)
	}
}

func TestKelvinFromDevice(t *testing.T) {
	tests := []struct {
		percent int
		want    int
	}{
		{0, 2000},
		{100, 6500},
		{50, 4250},
		{40, 3800},
	}

	for _, tt := range tests {
		if got := KelvinFromDevice(tt.percent); got != tt.want {
			t.Errorf("KelvinFromDevice(%d) = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

// =============================================================================
// Colour
// =============================================================================

func TestColorToDevice(t *testing.T) {
	c := device.RGB{R: 255, G: 200, B: 100}
	if got := ColorToDevice(c); got != "255:200:100" {
		t.Errorf("ColorToDevice = %q, want %q", got, "255:200:100")
	}
}

func TestColorFromDevice(t *testing.T) {
	got, err := ColorFromDevice("255:200:100")
	if err != nil {
		t.Fatalf("ColorFromDevice error: %v", err)
	}
	want := device.RGB{R: 255, G: 200, B: 100}
	if got != want {
		t.Errorf("ColorFromDevice = %+v, want %+v", got, want)
	}
}

func TestColorFromDevice_Invalid(t *testing.T) {
	tests := []string{
		"",
		"255:200",
		"255:200:100:50",
		"255:abc:100",
		"256:0:0",
		"-1:0:0",
	}

	for _, value := range tests {
		if _, err := ColorFromDevice(value); !errors.Is(err, ErrColorFormat) {
			t.Errorf("ColorFromDevice(%q) error = %v, want ErrColorFormat", value, err)
		}
	}
}

func TestRGBToHS(t *testing.T) {
	tests := []struct {
		name    string
		c       device.RGB
		wantHue float64
		wantSat float64
	}{
		{"red", device.RGB{R: 255}, 0, 100},
		{"green", device.RGB{G: 255}, 120, 100},
		{"blue", device.RGB{B: 255}, 240, 100},
		{"white", device.RGB{R: 255, G: 255, B: 255}, 0, 0},
		{"black", device.RGB{}, 0, 0},
		{"orange", device.RGB{R: 255, G: 128, B: 0}, 30.12, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hue, sat := RGBToHS(tt.c)
			if math.Abs(hue-tt.wantHue) > 0.1 {
				t.Errorf("hue = %.2f, want %.2f", hue, tt.wantHue)
			}
			if math.Abs(sat-tt.wantSat) > 0.1 {
				t.Errorf("saturation = %.2f, want %.2f", sat, tt.wantSat)
			}
		})
	}
}
