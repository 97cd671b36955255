// Package provisioning implements the multi-step flows that turn user
// input into persisted door entries.
//
// A flow is a session-scoped state machine. The manual path collects one
// door's coordinates and creates a single entry; the automatic path
// connects to the hub's SQL Server database, discovers the configured
// doors, and bulk-imports a selection of them. Reconfiguration reuses the
// manual form against an existing entry.
//
// The package renders nothing: every non-terminal result is a Step
// description (fields, defaults, error codes) for the caller's UI to
// draw. Validation failures re-render with the entered values preserved,
// except the database password, which is never echoed back.
//
// Entries are deduplicated by identity (hub address, hub port, door ID).
// On the manual path a duplicate aborts the flow; on the bulk import path
// duplicates are skipped and counted.
package provisioning
