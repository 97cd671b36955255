// Package discovery auto-detects hub configuration from the hub's own
// SQL Server database.
//
// Two read-only queries drive the automatic provisioning path: a port
// lookup against dbo.GlobalControl and a door listing against dbo.Door.
// Credentials are transient per call and never persisted.
package discovery
