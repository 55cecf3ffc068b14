package sengled

import (
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

// Bulb is the live control surface for one Sengled device.
//
// It owns the working copy of the device record and serialises all state
// mutations behind a per-device mutex, so a command's optimistic update
// cannot interleave with a status report for the same device. Different
// devices never contend with each other.
//
// Commands update local state optimistically: the new value is applied as
// soon as the publish succeeds, without waiting for the bulb to confirm
// on its status topic. The confirmation, when it arrives, is applied like
// any other status report.
type Bulb struct {
	mu        sync.Mutex
	dev       *device.Device
	publisher *Publisher
	onChange  func(dev device.Device, source string)
	logger    Logger
}

// NewBulb creates the control surface for a device.
//
// Parameters:
//   - dev: Device record (the bulb takes ownership of a deep copy)
//   - publisher: Command publisher for the MQTT broker
//
// Returns:
//   - *Bulb: Bulb ready for use
func NewBulb(dev *device.Device, publisher *Publisher) *Bulb {
	return &Bulb{
		dev:       dev.DeepCopy(),
		publisher: publisher,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the bulb.
func (b *Bulb) SetLogger(logger Logger) {
	b.logger = logger
}

// SetOnChange registers the callback invoked after every state change,
// with a copy of the device and the change source (mqtt, poll, command).
func (b *Bulb) SetOnChange(fn func(dev device.Device, source string)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// MAC returns the device MAC address.
func (b *Bulb) MAC() string {
	return b.dev.MAC
}

// Device returns a deep copy of the current device record.
func (b *Bulb) Device() *device.Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dev.DeepCopy()
}

// TurnOn switches the device on. Returns the command ID for log correlation.
func (b *Bulb) TurnOn() (string, error) {
	return b.setSwitch(true)
}

// TurnOff switches the device off. Returns the command ID for log correlation.
func (b *Bulb) TurnOff() (string, error) {
	return b.setSwitch(false)
}

func (b *Bulb) setSwitch(on bool) (string, error) {
	value := SwitchOff
	if on {
		value = SwitchOn
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	commandID, err := b.publisher.SendCommand(b.dev.MAC, AttrSwitch, value)
	if err != nil {
		return "", err
	}

	b.dev.State.On = on
	b.touchLocked()
	b.notifyLocked(device.StateHistorySourceCommand)
	return commandID, nil
}

// SetBrightness sets the light level on the 0-255 scale.
//
// Returns ErrUnsupported for devices without brightness control.
func (b *Bulb) SetBrightness(brightness int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.dev.SupportsBrightness {
		return "", ErrUnsupported
	}

	wire := strconv.Itoa(BrightnessToDevice(brightness))
	commandID, err := b.publisher.SendCommand(b.dev.MAC, AttrBrightness, wire)
	if err != nil {
		return "", err
	}

	// Store the value the device will actually apply, not the request.
	b.dev.State.Brightness = BrightnessFromDevice(BrightnessToDevice(brightness))
	if brightness > 0 {
		b.dev.State.On = true
	}
	b.touchLocked()
	b.notifyLocked(device.StateHistorySourceCommand)
	return commandID, nil
}

// SetColor sets an RGB colour.
//
// Returns ErrUnsupported for devices without colour support.
func (b *Bulb) SetColor(c device.RGB) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.dev.SupportsColor {
		return "", ErrUnsupported
	}

	commandID, err := b.publisher.SendCommand(b.dev.MAC, AttrColor, ColorToDevice(c))
	if err != nil {
		return "", err
	}

	colour := c
	b.dev.State.Color = &colour
	b.dev.State.ColorMode = device.ColorModeRGB
	b.dev.State.On = true
	b.touchLocked()
	b.notifyLocked(device.StateHistorySourceCommand)
	return commandID, nil
}

// SetColorTemperature sets the white colour temperature in kelvin.
//
// Returns ErrUnsupported for devices without tunable white support.
func (b *Bulb) SetColorTemperature(kelvin int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.dev.SupportsColorTemp {
		return "", ErrUnsupported
	}

	wire := strconv.Itoa(KelvinToDevice(kelvin))
	commandID, err := b.publisher.SendCommand(b.dev.MAC, AttrColorTemperature, wire)
	if err != nil {
		return "", err
	}

	b.dev.State.ColorTemp = kelvin
	b.dev.State.ColorMode = device.ColorModeColorTemp
	b.touchLocked()
	b.notifyLocked(device.StateHistorySourceCommand)
	return commandID, nil
}

// ApplyStatus merges a status report from the device's MQTT status topic.
//
// Unknown attribute kinds are ignored; a malformed colour value drops that
// attribute only.
func (b *Bulb) ApplyStatus(attrs []Attribute) {
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := false
	for _, attr := range attrs {
		if attr.DN != "" && attr.DN != b.dev.MAC {
			continue
		}
		if b.applyAttributeLocked(attr.Type, attr.Value) {
			changed = true
		}
	}

	if changed {
		b.touchLocked()
		b.notifyLocked(device.StateHistorySourceMQTT)
	}
}

// ApplySnapshot merges a polled provider snapshot into the device state.
//
// The on/off switch is deliberately local-wins: the provider's view lags
// commands in flight, so a mismatch is logged and the local value kept.
// Everything else takes the provider's value.
func (b *Bulb) ApplySnapshot(snap device.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := false

	if wire, ok := snap.Attributes[AttrSwitch]; ok {
		reported := wire == SwitchOn
		if reported != b.dev.State.On {
			b.logger.Warn("switch state mismatch, keeping local state",
				"mac", b.dev.MAC,
				"local", b.dev.State.On,
				"reported", reported,
			)
		}
	}

	for _, kind := range []string{
		AttrBrightness, AttrColorTemperature, AttrColor, AttrColorMode,
		AttrRSSI, AttrVersion,
		AttrAtomizerSwitch, AttrAtomizerMode, AttrAtomizerSleep, AttrWaterState,
	} {
		if value, ok := snap.Attributes[kind]; ok {
			if b.applyAttributeLocked(kind, value) {
				changed = true
			}
		}
	}

	if b.dev.Online != snap.Online {
		b.dev.Online = snap.Online
		changed = true
	}

	if changed {
		b.touchLocked()
		b.notifyLocked(device.StateHistorySourcePoll)
	}
}

// MarkUnavailable flags the device as offline after a failed poll.
//
// The last known state is retained so the device comes back with sensible
// values once it is reachable again. Already-offline devices produce no
// change event.
func (b *Bulb) MarkUnavailable() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.dev.Online {
		return
	}
	b.dev.Online = false
	b.touchLocked()
	b.notifyLocked(device.StateHistorySourcePoll)
}

// applyAttributeLocked applies one wire attribute to the device state and
// reports whether anything changed. Caller holds b.mu.
func (b *Bulb) applyAttributeLocked(kind, value string) bool {
	switch kind {
	case AttrSwitch:
		on := value == SwitchOn
		if b.dev.State.On == on {
			return false
		}
		b.dev.State.On = on
		return true

	case AttrBrightness:
		percent, err := strconv.Atoi(value)
		if err != nil {
			b.logger.Warn("unparseable brightness", "mac", b.dev.MAC, "value", value)
			return false
		}
		brightness := BrightnessFromDevice(percent)
		if b.dev.State.Brightness == brightness {
			return false
		}
		b.dev.State.Brightness = brightness
		return true

	case AttrColorTemperature:
		percent, err := strconv.Atoi(value)
		if err != nil {
			b.logger.Warn("unparseable color temperature", "mac", b.dev.MAC, "value", value)
			return false
		}
		kelvin := KelvinFromDevice(percent)
		if b.dev.State.ColorTemp == kelvin {
			return false
		}
		b.dev.State.ColorTemp = kelvin
		return true

	case AttrColor:
		colour, err := ColorFromDevice(value)
		if err != nil {
			b.logger.Warn("unparseable color", "mac", b.dev.MAC, "value", value)
			return false
		}
		if b.dev.State.Color != nil && *b.dev.State.Color == colour {
			return false
		}
		b.dev.State.Color = &colour
		return true

	case AttrColorMode:
		mode := b.dev.State.ColorMode
		switch value {
		case wireColorModeRGB:
			mode = device.ColorModeRGB
		case wireColorModeCT:
			mode = device.ColorModeColorTemp
		}
		if b.dev.State.ColorMode == mode {
			return false
		}
		b.dev.State.ColorMode = mode
		return true

	case AttrRSSI:
		rssi, err := strconv.Atoi(value)
		if err != nil || b.dev.State.RSSI == rssi {
			return false
		}
		b.dev.State.RSSI = rssi
		return true

	case AttrVersion:
		if value == "" || b.dev.FirmwareVersion == value {
			return false
		}
		b.dev.FirmwareVersion = value
		return true

	case AttrOnline:
		online := value == "1"
		if b.dev.Online == online {
			return false
		}
		b.dev.Online = online
		return true

	case AttrAtomizerSwitch, AttrAtomizerMode, AttrAtomizerSleep, AttrWaterState:
		return b.applyDiffuserLocked(kind, value)

	default:
		return false
	}
}

// applyDiffuserLocked applies a diffuser attribute. Caller holds b.mu.
func (b *Bulb) applyDiffuserLocked(kind, value string) bool {
	if b.dev.Class != device.ClassDiffuser {
		return false
	}
	if b.dev.State.Diffuser == nil {
		b.dev.State.Diffuser = &device.DiffuserState{}
	}

	switch kind {
	case AttrAtomizerMode:
		if b.dev.State.Diffuser.Mode == value {
			return false
		}
		b.dev.State.Diffuser.Mode = value
		return true

	case AttrAtomizerSwitch:
		intensity := 0
		if value == SwitchOn {
			intensity = 100
		} else if n, err := strconv.Atoi(value); err == nil {
			intensity = n
		}
		if b.dev.State.Diffuser.Intensity == intensity {
			return false
		}
		b.dev.State.Diffuser.Intensity = intensity
		return true

	case AttrAtomizerSleep:
		if b.dev.State.Diffuser.Sleep == value {
			return false
		}
		b.dev.State.Diffuser.Sleep = value
		return true

	case AttrWaterState:
		if b.dev.State.Diffuser.WaterState == value {
			return false
		}
		b.dev.State.Diffuser.WaterState = value
		return true

	default:
		return false
	}
}

// touchLocked stamps the state change time. Caller holds b.mu.
func (b *Bulb) touchLocked() {
	b.dev.State.UpdatedAt = time.Now().UTC()
}

// notifyLocked invokes the change callback with a copy. Caller holds b.mu.
func (b *Bulb) notifyLocked(source string) {
	if b.onChange == nil {
		return
	}
	b.onChange(*b.dev.DeepCopy(), source)
}
