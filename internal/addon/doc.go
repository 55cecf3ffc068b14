// Package addon provides the client for the local Sengled add-on HTTP API.
//
// The add-on runs on the LAN alongside the MQTT broker and tracks every
// Sengled Wi-Fi device it has seen. The bridge uses it as the device
// provider for local installations: the listing endpoint seeds the device
// registry, and the single-device endpoint backs the periodic state poll.
//
// Attribute values arrive in the device's own units (brightness 0-100,
// colour temperature 0-100, colour "r:g:b"); conversion to the bridge's
// scales happens in the sengled package, not here. The client only
// normalises attribute values to strings and classifies diffusers by the
// presence of atomizer attributes.
package addon
