// Package store provides SQLite-backed durable storage for program change logs.
//
// The store is a keyed record store addressed by (collection, id) with:
//   - Create: insert if absent, report whether a row was written
//   - Select: fetch one record by id
//   - Scan: every record of a collection, ordered by id
//   - Upsert: overwrite the full record by id
//
// Change logs are written wholesale: the tracker holds the complete log in
// memory, edits it, and puts it back. Upsert compares content digests and
// skips writes that would not change anything.
//
// Snapshot passes are journaled in snapshot_runs so each pass can be audited
// after the fact.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
