// Package mqtt provides MQTT client connectivity for the Sengled bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Sengled Wi-Fi bulbs connect to the same MQTT broker and exchange state
// on the wifielement topic hierarchy. The bridge publishes commands to
// wifielement/{mac}/update and listens on wifielement/+/status.
//
//	Sengled Bridge ↔ MQTT Broker ↔ Sengled Wi-Fi Bulbs
//
// Clients are constructed explicitly via Connect and passed by reference;
// there is no package-level singleton instance.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all device status updates
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceStatuses(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish command
//	topic := mqtt.Topics{}.DeviceUpdate("B0:CE:18:10:A4:BB")
//	client.Publish(topic, payload, 1, false)
package mqtt
