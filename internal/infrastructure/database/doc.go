// Package database provides SQLite connection management and schema
// migrations for Switchboard's persistent state.
//
// The database holds whole-collection JSON documents (jobs, clients,
// switches, switch states) in a single collections table. Connections
// are configured for single-writer access with WAL mode and a busy
// timeout, which suits SQLite's concurrency model.
//
// Migrations are embedded SQL files applied in version order inside
// individual transactions. The migrations package registers its
// embedded filesystem via MigrationsFS at init time.
package database
