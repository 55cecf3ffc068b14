package sengled

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/sengled-bridge/internal/device"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/mqtt"
)

const (
	// persistTimeout bounds the database writes triggered by a state change.
	persistTimeout = 5 * time.Second

	// pruneInterval is how often old state history is deleted.
	pruneInterval = time.Hour
)

// Subscriber is the subset of the MQTT client the bridge needs for the
// status stream. Satisfied by *mqtt.Client; tests substitute a fake.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// HistoryRecorder persists state changes and prunes old entries.
// Satisfied by *device.SQLiteStateHistoryRepository.
type HistoryRecorder interface {
	RecordStateChange(ctx context.Context, mac string, state device.State, source string) error
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}

// MetricsWriter mirrors state changes into a time-series store.
// Satisfied by the influxdb client wrapper.
type MetricsWriter interface {
	WriteDeviceState(dev device.Device, source string)
}

// Config holds bridge behaviour settings.
type Config struct {
	// PollInterval is how often each device is refreshed from the provider.
	PollInterval time.Duration

	// HistoryRetention is how long state history rows are kept.
	// Zero disables pruning.
	HistoryRetention time.Duration

	// QoS is the QoS level for the status subscription.
	QoS byte
}

// Bridge connects the Sengled device fleet to the rest of the system.
//
// It discovers devices through a DeviceProvider, listens to the shared
// wifielement/+/status subscription, refreshes each device on a poll
// timer, and fans every state change out to the registry, the state
// history, the metrics mirror, and the WebSocket broadcast hook.
type Bridge struct {
	cfg        Config
	provider   DeviceProvider
	registry   *device.Registry
	publisher  *Publisher
	subscriber Subscriber

	history  HistoryRecorder
	metrics  MetricsWriter
	onChange func(dev device.Device, source string)

	bulbs   map[string]*Bulb
	bulbsMu sync.RWMutex

	logger Logger
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewBridge creates a bridge.
//
// Parameters:
//   - cfg: Behaviour settings (poll interval, retention, QoS)
//   - provider: Device discovery source (add-on or cloud)
//   - registry: Device registry for persistence and API reads
//   - publisher: Command publisher
//   - subscriber: MQTT client for the status subscription
//
// Returns:
//   - *Bridge: Bridge ready for Start
func NewBridge(cfg Config, provider DeviceProvider, registry *device.Registry, publisher *Publisher, subscriber Subscriber) *Bridge {
	return &Bridge{
		cfg:        cfg,
		provider:   provider,
		registry:   registry,
		publisher:  publisher,
		subscriber: subscriber,
		bulbs:      make(map[string]*Bulb),
		logger:     noopLogger{},
		done:       make(chan struct{}),
	}
}

// SetLogger sets the logger for the bridge.
func (br *Bridge) SetLogger(logger Logger) {
	br.logger = logger
}

// SetHistory enables state history recording.
func (br *Bridge) SetHistory(history HistoryRecorder) {
	br.history = history
}

// SetMetrics enables the time-series state mirror.
func (br *Bridge) SetMetrics(metrics MetricsWriter) {
	br.metrics = metrics
}

// SetOnChange registers a hook invoked after every state change, used by
// the API layer to broadcast over WebSocket.
func (br *Bridge) SetOnChange(fn func(dev device.Device, source string)) {
	br.onChange = fn
}

// Start discovers devices, subscribes to the status stream, and starts
// the poll and prune loops.
//
// Parameters:
//   - ctx: Context for the initial discovery and subscription
//
// Returns:
//   - error: nil on success; a failed initial discovery aborts startup
func (br *Bridge) Start(ctx context.Context) error {
	if err := br.RefreshAll(ctx); err != nil {
		return fmt.Errorf("initial device discovery: %w", err)
	}

	topic := mqtt.Topics{}.AllDeviceStatuses()
	if err := br.subscriber.Subscribe(topic, br.cfg.QoS, br.handleStatus); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	br.wg.Add(1)
	go br.pollLoop()

	if br.history != nil && br.cfg.HistoryRetention > 0 {
		br.wg.Add(1)
		go br.pruneLoop()
	}

	br.logger.Info("bridge started",
		"devices", br.registry.GetDeviceCount(),
		"poll_interval", br.cfg.PollInterval,
	)
	return nil
}

// Stop terminates the background loops and waits for them to exit.
func (br *Bridge) Stop() {
	close(br.done)
	br.wg.Wait()
	br.logger.Info("bridge stopped")
}

// Bulb returns the control surface for a device.
//
// Returns ErrUnknownDevice for MACs the bridge has not discovered.
func (br *Bridge) Bulb(mac string) (*Bulb, error) {
	br.bulbsMu.RLock()
	defer br.bulbsMu.RUnlock()

	bulb, ok := br.bulbs[mac]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, mac)
	}
	return bulb, nil
}

// RefreshAll re-discovers the device set from the provider.
//
// The replacement is atomic: if the provider listing or any persistence
// step fails, the previous device set stays in place untouched. Devices
// that survive the refresh keep their live state; devices that vanished
// from the provider are dropped.
func (br *Bridge) RefreshAll(ctx context.Context) error {
	snapshots, err := br.provider.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}

	devices := make([]device.Device, 0, len(snapshots))
	fresh := 0
	for _, snap := range snapshots {
		dev := snap.Device()

		if existing, err := br.registry.GetDevice(ctx, snap.MAC); err == nil {
			dev.State = existing.State
			dev.CreatedAt = existing.CreatedAt
		} else {
			dev.State = seedState(snap, dev.Class)
			fresh++
		}

		devices = append(devices, *dev)
	}

	if err := br.registry.ReplaceAll(ctx, devices); err != nil {
		return err
	}

	br.bulbsMu.Lock()
	next := make(map[string]*Bulb, len(devices))
	for i := range devices {
		mac := devices[i].MAC
		if existing, ok := br.bulbs[mac]; ok {
			next[mac] = existing
			continue
		}

		bulb := NewBulb(&devices[i], br.publisher)
		bulb.SetLogger(br.logger)
		bulb.SetOnChange(br.handleChange)
		next[mac] = bulb
	}
	removed := len(br.bulbs) - countSurvivors(br.bulbs, next)
	br.bulbs = next
	br.bulbsMu.Unlock()

	br.logger.Info("device set refreshed",
		"devices", len(devices),
		"new", fresh,
		"removed", removed,
	)
	return nil
}

// countSurvivors reports how many of prev's keys survive in next.
func countSurvivors(prev, next map[string]*Bulb) int {
	n := 0
	for mac := range prev {
		if _, ok := next[mac]; ok {
			n++
		}
	}
	return n
}

// seedState builds the initial state of a newly discovered device from its
// provider attributes. Unparseable values are simply left at their zero
// value; the status stream and poll loop correct them soon enough.
func seedState(snap device.Snapshot, class device.Class) device.State {
	attrs := snap.Attributes
	state := device.State{
		On:        attrs[AttrSwitch] == SwitchOn,
		UpdatedAt: time.Now().UTC(),
	}

	if v, err := strconv.Atoi(attrs[AttrBrightness]); err == nil {
		state.Brightness = BrightnessFromDevice(v)
	}
	if v, err := strconv.Atoi(attrs[AttrColorTemperature]); err == nil {
		state.ColorTemp = KelvinFromDevice(v)
	}
	if c, err := ColorFromDevice(attrs[AttrColor]); err == nil {
		state.Color = &c
	}
	if v, err := strconv.Atoi(attrs[AttrRSSI]); err == nil {
		state.RSSI = v
	}

	switch attrs[AttrColorMode] {
	case wireColorModeRGB:
		state.ColorMode = device.ColorModeRGB
	case wireColorModeCT:
		state.ColorMode = device.ColorModeColorTemp
	}

	if class == device.ClassDiffuser {
		diffuser := &device.DiffuserState{
			Mode:       attrs[AttrAtomizerMode],
			Sleep:      attrs[AttrAtomizerSleep],
			WaterState: attrs[AttrWaterState],
		}
		if attrs[AttrAtomizerSwitch] == SwitchOn {
			diffuser.Intensity = 100
		} else if v, err := strconv.Atoi(attrs[AttrAtomizerSwitch]); err == nil {
			diffuser.Intensity = v
		}
		state.Diffuser = diffuser
	}

	return state
}

// handleStatus is the MQTT handler for wifielement/+/status messages.
func (br *Bridge) handleStatus(topic string, payload []byte) error {
	mac, ok := mqtt.ParseStatusTopic(topic)
	if !ok {
		return nil
	}

	attrs, err := ParseStatus(payload)
	if err != nil {
		return fmt.Errorf("status from %s: %w", mac, err)
	}
	if len(attrs) == 0 {
		return nil
	}

	bulb, err := br.Bulb(mac)
	if err != nil {
		// Status from a device the provider has not listed yet; the next
		// poll cycle will pick it up.
		br.logger.Debug("status for unknown device", "mac", mac)
		return nil
	}

	bulb.ApplyStatus(attrs)
	return nil
}

// handleChange fans a state change out to persistence, history, metrics,
// and the broadcast hook. Registered as every bulb's change callback.
func (br *Bridge) handleChange(dev device.Device, source string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := br.registry.SetDeviceState(ctx, dev.MAC, dev.State); err != nil {
		br.logger.Error("persisting device state", "mac", dev.MAC, "error", err)
	}
	if err := br.registry.SetDeviceOnline(ctx, dev.MAC, dev.Online); err != nil {
		br.logger.Error("persisting device online", "mac", dev.MAC, "error", err)
	}

	if br.history != nil {
		if err := br.history.RecordStateChange(ctx, dev.MAC, dev.State, source); err != nil {
			br.logger.Error("recording state history", "mac", dev.MAC, "error", err)
		}
	}

	if br.metrics != nil {
		br.metrics.WriteDeviceState(dev, source)
	}

	if br.onChange != nil {
		br.onChange(dev, source)
	}
}

// pollLoop refreshes every device from the provider on a fixed interval.
func (br *Bridge) pollLoop() {
	defer br.wg.Done()

	ticker := time.NewTicker(br.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			br.pollOnce()
		case <-br.done:
			return
		}
	}
}

// pollOnce fetches current attributes for every known device.
func (br *Bridge) pollOnce() {
	br.bulbsMu.RLock()
	bulbs := make([]*Bulb, 0, len(br.bulbs))
	for _, bulb := range br.bulbs {
		bulbs = append(bulbs, bulb)
	}
	br.bulbsMu.RUnlock()

	for _, bulb := range bulbs {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		snap, err := br.provider.GetDevice(ctx, bulb.MAC())
		cancel()
		if err != nil {
			br.logger.Warn("device poll failed", "mac", bulb.MAC(), "error", err)
			bulb.MarkUnavailable()
			continue
		}
		bulb.ApplySnapshot(snap)
	}
}

// pruneLoop deletes state history past the retention window.
func (br *Bridge) pruneLoop() {
	defer br.wg.Done()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			deleted, err := br.history.PruneHistory(ctx, br.cfg.HistoryRetention)
			cancel()
			if err != nil {
				br.logger.Error("pruning state history", "error", err)
			} else if deleted > 0 {
				br.logger.Info("state history pruned", "deleted", deleted)
			}
		case <-br.done:
			return
		}
	}
}
