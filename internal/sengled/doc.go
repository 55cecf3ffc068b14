// Package sengled implements the Sengled Wi-Fi device protocol and the
// bridge runtime built on top of it.
//
// Sengled Wi-Fi bulbs and diffusers talk MQTT directly: the bridge
// publishes single-attribute commands to wifielement/{mac}/update and
// devices report state changes on wifielement/{mac}/status. Device
// discovery happens out-of-band through a DeviceProvider (the local
// add-on HTTP API or the Sengled cloud).
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────────┐
//	│                         Bridge                           │
//	│  discovery (provider) · status subscription · poll loop  │
//	└───────┬──────────────────────┬───────────────────────────┘
//	        │                      │ state changes
//	┌───────▼────────┐     ┌───────▼──────────────────────────┐
//	│  Bulb (per     │     │  registry · history · metrics ·  │
//	│  device mutex) │     │  WebSocket broadcast             │
//	└───────┬────────┘     └──────────────────────────────────┘
//	        │ commands
//	┌───────▼────────┐
//	│   Publisher    │──▶ wifielement/{mac}/update
//	└────────────────┘
//
// Unit conversions between the bridge's representation (0-255
// brightness, kelvin colour temperature) and the device's percentage
// scales live in translate.go and are applied only at the MQTT
// boundary; everything above the Bulb works in bridge units.
package sengled
