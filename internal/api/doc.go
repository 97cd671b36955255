// Package api implements the HTTP REST API and WebSocket server for Door Core.
//
// This package provides:
//   - Provisioning flow endpoints (start, submit steps, reconfigure)
//   - Entry CRUD and door action dispatch endpoints
//   - WebSocket hub for real-time entry and action-result broadcasts
//   - JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Security
//
// Every route except health and login requires a Bearer JWT signed with
// the configured secret; dispatching a door action operates physical
// hardware. WebSocket connections use single-use tickets to keep tokens
// out of URLs.
//
// # Flow semantics
//
// Step submissions never fail with HTTP errors for bad field values: the
// response is the same form again with error codes attached, so the UI
// re-renders. HTTP errors are reserved for unknown flows, step
// mismatches, and malformed JSON.
package api
