// Package influxdb mirrors device state changes into InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with the bridge's
// patterns for connection management, batched writes, and health
// monitoring.
//
// # Purpose
//
// Every state change the bridge observes (MQTT status report, poll
// result, or command's optimistic update) is written as a point in the
// device_state measurement, tagged with the device MAC, class, and
// change source. This gives long-term history and dashboards without
// burdening the SQLite state store.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "sengled",
//	    Bucket: "devices",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteDeviceState(dev, "mqtt")
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via
// the SetOnError callback. Connection and health check errors are
// returned directly.
package influxdb
