package mqtt

import (
	"context"
	"errors"
	"testing"
)

// =============================================================================
// Validation Tests (no broker required)
// =============================================================================

func TestPublishEmptyTopic(t *testing.T) {
	client := &Client{}

	err := client.Publish("", []byte("test"), 1, false)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	client := &Client{}

	err := client.Publish("test/topic", []byte("test"), 3, false)
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishDisconnected(t *testing.T) {
	// A client that never connected must refuse to publish without panicking.
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Publish(Topics{}.DeviceUpdate("AA:BB:CC:DD:EE:FF"), []byte(`[]`), 1, false)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestPublishOversizedPayload(t *testing.T) {
	client := &Client{}

	payload := make([]byte, maxPayloadSize+1)
	err := client.Publish("test/topic", payload, 1, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribeEmptyTopic(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Subscribe("", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribeInvalidQoS(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Subscribe("test/topic", 3, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Subscribe("test/topic", 1, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() error = %v, want ErrSubscribeFailed", err)
	}
}

func TestSubscribeDisconnected(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Subscribe("test/topic", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Unsubscribe Tests
// =============================================================================

func TestUnsubscribeIsLocalOnly(t *testing.T) {
	// Unsubscribe only drops the handler from the re-subscription map; it
	// must succeed even while disconnected.
	client := &Client{subscriptions: make(map[string]subscription)}
	topic := Topics{}.AllDeviceStatuses()
	client.subscriptions[topic] = subscription{
		topic:   topic,
		qos:     1,
		handler: func(string, []byte) error { return nil },
	}

	if err := client.Unsubscribe(topic); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}

	if client.HasSubscription(topic) {
		t.Error("HasSubscription() = true after Unsubscribe(), want false")
	}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}

func TestUnsubscribeEmptyTopic(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Unsubscribe("")
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestUnsubscribeUnknownTopic(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if err := client.Unsubscribe("wifielement/unknown/status"); err != nil {
		t.Errorf("Unsubscribe() of unknown topic error = %v, want nil", err)
	}
}

// =============================================================================
// State Tests
// =============================================================================

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := &Client{}

	err := client.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := &Client{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := client.HealthCheck(ctx)
	if err == nil {
		t.Error("HealthCheck() expected error for cancelled context")
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if client.HasSubscription("nonexistent/topic") {
		t.Error("HasSubscription() should be false for unsubscribed topic")
	}
}

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "DeviceUpdate",
			builder: func() string {
				return Topics{}.DeviceUpdate("B0:CE:18:10:A4:BB")
			},
			expected: "wifielement/B0:CE:18:10:A4:BB/update",
		},
		{
			name: "DeviceStatus",
			builder: func() string {
				return Topics{}.DeviceStatus("B0:CE:18:10:A4:BB")
			},
			expected: "wifielement/B0:CE:18:10:A4:BB/status",
		},
		{
			name: "AllDeviceStatuses",
			builder: func() string {
				return Topics{}.AllDeviceStatuses()
			},
			expected: "wifielement/+/status",
		},
		{
			name: "BridgeStatus",
			builder: func() string {
				return Topics{}.BridgeStatus()
			},
			expected: "sengledbridge/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

func TestParseStatusTopic(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		wantMAC string
		wantOK  bool
	}{
		{
			name:    "valid status topic",
			topic:   "wifielement/B0:CE:18:10:A4:BB/status",
			wantMAC: "B0:CE:18:10:A4:BB",
			wantOK:  true,
		},
		{
			name:   "update topic is not a status topic",
			topic:  "wifielement/B0:CE:18:10:A4:BB/update",
			wantOK: false,
		},
		{
			name:   "wrong prefix",
			topic:  "zigbee/B0:CE:18:10:A4:BB/status",
			wantOK: false,
		},
		{
			name:   "empty mac",
			topic:  "wifielement//status",
			wantOK: false,
		},
		{
			name:   "too many segments",
			topic:  "wifielement/mac/extra/status",
			wantOK: false,
		},
		{
			name:   "empty topic",
			topic:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mac, ok := ParseStatusTopic(tt.topic)
			if ok != tt.wantOK {
				t.Fatalf("ParseStatusTopic(%q) ok = %v, want %v", tt.topic, ok, tt.wantOK)
			}
			if ok && mac != tt.wantMAC {
				t.Errorf("ParseStatusTopic(%q) mac = %q, want %q", tt.topic, mac, tt.wantMAC)
			}
		})
	}
}
