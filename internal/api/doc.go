// Package api implements the HTTP REST API and WebSocket server for the
// Sengled bridge.
//
// This package provides:
//   - REST endpoints for device listing, state reads, commands, and history
//   - WebSocket hub for real-time state change broadcasts
//   - JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for exposed deployments
//
// # Architecture
//
// The API server sits between user interfaces (Home Assistant, dashboards,
// scripts) and the bridge runtime. Commands flow through the bridge's Bulb
// control surface onto the MQTT broker; state changes flow back through the
// bridge's change hook and are broadcast to WebSocket clients on the
// device.state_changed channel.
//
// # Security
//
// Authentication uses HS256 JWTs issued against the single configured user.
// WebSocket connections use single-use tickets to prevent token leakage in
// URLs.
package api
