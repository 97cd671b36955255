// Package database manages the SQLite connection for the entry store.
//
// It opens the database with WAL mode and busy-timeout pragmas, applies
// versioned schema migrations, and exposes health checks. The entry
// repository in internal/entry builds on the *sql.DB this package provides.
package database
