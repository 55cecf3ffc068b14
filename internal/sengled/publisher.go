package sengled

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sengled-bridge/internal/infrastructure/mqtt"
)

// MQTTClient is the subset of the MQTT client the publisher needs.
// Satisfied by *mqtt.Client; tests substitute a fake.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// Publisher sends device commands on the wifielement topic hierarchy.
//
// Each command is a single-attribute JSON array published to
// wifielement/{mac}/update. Commands are fire-and-forget: the bulb
// confirms by reporting the attribute back on its status topic, and
// there is no retry or queueing when the broker is unreachable.
type Publisher struct {
	client MQTTClient
	qos    byte
	logger Logger
}

// NewPublisher creates a command publisher.
//
// Parameters:
//   - client: Connected MQTT client
//   - qos: QoS level for command publishes (0, 1, or 2)
//
// Returns:
//   - *Publisher: Publisher ready for use
func NewPublisher(client MQTTClient, qos byte) *Publisher {
	return &Publisher{
		client: client,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the publisher.
func (p *Publisher) SetLogger(logger Logger) {
	p.logger = logger
}

// SendCommand publishes one attribute command to a device.
//
// The payload matches what the Sengled firmware expects:
//
//	[{"dn":"<mac>","type":"<kind>","value":"<value>","time":<epoch ms>}]
//
// Parameters:
//   - mac: Target device MAC address
//   - kind: Attribute kind (AttrSwitch, AttrBrightness, ...)
//   - value: Attribute value in the device's own units
//
// Returns:
//   - string: Command ID for correlating logs with status updates
//   - error: mqtt.ErrNotConnected when the broker is unreachable,
//     otherwise the underlying publish error
func (p *Publisher) SendCommand(mac, kind, value string) (string, error) {
	payload, err := json.Marshal([]Attribute{{
		DN:    mac,
		Type:  kind,
		Value: value,
		Time:  time.Now().UnixMilli(),
	}})
	if err != nil {
		return "", fmt.Errorf("encoding command: %w", err)
	}

	commandID := uuid.NewString()
	topic := mqtt.Topics{}.DeviceUpdate(mac)

	if err := p.client.Publish(topic, payload, p.qos, false); err != nil {
		p.logger.Error("command publish failed",
			"command_id", commandID,
			"mac", mac,
			"kind", kind,
			"error", err,
		)
		return commandID, err
	}

	p.logger.Debug("command published",
		"command_id", commandID,
		"mac", mac,
		"kind", kind,
		"value", value,
	)
	return commandID, nil
}
