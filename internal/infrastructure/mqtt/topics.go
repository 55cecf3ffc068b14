package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the Sengled Wi-Fi protocol.
//
// Sengled Wi-Fi bulbs speak MQTT directly against the broker using the
// wifielement hierarchy: wifielement/{mac}/{direction}. The bridge
// publishes commands to the update leaf and listens on the status leaf.
const (
	// TopicPrefixDevice is the base for all per-device topics.
	TopicPrefixDevice = "wifielement"

	// TopicPrefixBridge is the base for the bridge's own presence topics.
	TopicPrefixBridge = "sengledbridge"
)

// Topics provides builders for Sengled MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	updateTopic := topics.DeviceUpdate("B0:CE:18:10:A4:BB")
//	// Returns: "wifielement/B0:CE:18:10:A4:BB/update"
type Topics struct{}

// DeviceUpdate returns the topic commands are published to for a device.
//
// Example: wifielement/B0:CE:18:10:A4:BB/update
func (Topics) DeviceUpdate(mac string) string {
	return fmt.Sprintf("%s/%s/update", TopicPrefixDevice, mac)
}

// DeviceStatus returns the topic a device reports state changes on.
//
// Example: wifielement/B0:CE:18:10:A4:BB/status
func (Topics) DeviceStatus(mac string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixDevice, mac)
}

// AllDeviceStatuses returns a pattern matching every device's status topic.
//
// Pattern: wifielement/+/status
func (Topics) AllDeviceStatuses() string {
	return fmt.Sprintf("%s/+/status", TopicPrefixDevice)
}

// BridgeStatus returns the bridge's own presence topic, used for the
// LWT and online/offline announcements.
//
// Example: sengledbridge/status
func (Topics) BridgeStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixBridge)
}

// ParseStatusTopic extracts the device MAC from a status topic.
//
// Parameters:
//   - topic: A concrete topic as delivered by the broker
//
// Returns:
//   - string: The device MAC address
//   - bool: false if the topic is not a wifielement status topic
func ParseStatusTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != TopicPrefixDevice || parts[2] != "status" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
