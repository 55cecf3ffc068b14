package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

// WriteDeviceState records a device state change in the device_state
// measurement.
//
// Called on every state change the bridge observes, regardless of whether
// it came from the MQTT status stream, a poll, or a command's optimistic
// update; the origin is recorded in the source tag. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - dev: Device snapshot at the time of the change
//   - source: Change origin (mqtt, poll, or command)
func (c *Client) WriteDeviceState(dev device.Device, source string) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{
		"on":     dev.State.On,
		"online": dev.Online,
	}
	if dev.SupportsBrightness {
		fields["brightness"] = dev.State.Brightness
	}
	if dev.State.ColorTemp > 0 {
		fields["color_temp"] = dev.State.ColorTemp
	}
	if dev.State.Color != nil {
		fields["color"] = dev.State.Color.String()
	}
	if dev.State.RSSI != 0 {
		fields["rssi"] = dev.State.RSSI
	}
	if dev.State.Diffuser != nil {
		fields["atomizer_intensity"] = dev.State.Diffuser.Intensity
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"mac":    dev.MAC,
			"class":  string(dev.Class),
			"source": source,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteBridgeStats records bridge-level counters in the bridge_stats
// measurement.
//
// Parameters:
//   - stats: Current registry statistics
func (c *Client) WriteBridgeStats(stats device.Stats) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{
		"devices": stats.TotalDevices,
		"online":  stats.Online,
	}
	for class, count := range stats.ByClass {
		fields["class_"+string(class)] = count
	}

	point := write.NewPoint("bridge_stats", nil, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
