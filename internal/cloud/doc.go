// Package cloud provides the Sengled cloud device provider.
//
// Installations without the local add-on authenticate against the Sengled
// account (AuthenCross.json on the ucenter host) and list Wi-Fi devices
// from the life2 API. The session cookie is held in memory and renewed
// once when a listing is rejected.
//
// The cloud is only used for device discovery and capability metadata;
// commands and live state always travel over the MQTT broker.
package cloud
