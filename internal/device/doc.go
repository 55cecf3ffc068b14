// Package device provides the device registry for the Sengled bridge.
//
// The registry is the catalogue of every Sengled Wi-Fi bulb and diffuser
// known to the bridge. It manages device records, the last known state of
// each device, and a local state change history.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────────────────┐
//	│                          Device Registry                                 │
//	│                                                                          │
//	│  ┌──────────────────┐    ┌──────────────────┐    ┌──────────────────┐   │
//	│  │     Registry     │    │    Repository    │    │  State History   │   │
//	│  │   (registry.go)  │───▶│  (repository.go) │    │(state_history.go)│   │
//	│  │                  │    │                  │    │                  │   │
//	│  │ • MAC-keyed CRUD │    │ • SQLite queries │    │ • Change records │   │
//	│  │ • In-memory cache│    │ • JSON state     │    │ • Retention prune│   │
//	│  │ • Thread safety  │    │ • Upserts        │    │ • mqtt/poll/cmd  │   │
//	│  └──────────────────┘    └──────────────────┘    └──────────────────┘   │
//	│           │                       │                                      │
//	└───────────│───────────────────────│──────────────────────────────────────┘
//	            │                       │
//	            ▼                       ▼
//	┌──────────────────────┐   ┌──────────────────────┐
//	│  Bridge / REST API   │   │   SQLite Database    │
//	│  • GET /api/devices  │   │   (devices table)    │
//	│  • WebSocket state   │   └──────────────────────┘
//	└──────────────────────┘
//
// # Key Types
//
//   - Device: A Sengled Wi-Fi device keyed by MAC address
//   - State: Typed last-known device state (on, brightness, colour, colour temp)
//   - Class: Device classification (bulb or diffuser)
//   - Snapshot: A provider-side device description before conversion
//
// # Usage
//
//	// Create repository and registry
//	repo := device.NewSQLiteRepository(db)
//	registry := device.NewRegistry(repo)
//	registry.SetLogger(log)
//
//	// Load devices into cache on startup
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	// Record a discovered device
//	dev := snapshot.Device()
//	if err := registry.UpsertDevice(ctx, dev); err != nil {
//	    return err
//	}
//
//	// Update state (from the MQTT status stream)
//	registry.SetDeviceState(ctx, mac, device.State{On: true, Brightness: 192})
//
// # Thread Safety
//
// The Registry is safe for concurrent use. All operations are protected by
// a read-write mutex and returned devices are deep copies, so callers can
// never mutate the cache through a returned pointer. The Repository
// implementation must also be thread-safe.
//
// # Related Documentation
//
//   - migrations/20260301_120000_initial_schema.up.sql — Database schema
package device
