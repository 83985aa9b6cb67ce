// Package store provides the SQLite-backed persistence facade of a process
// design project.
//
// The store holds:
//   - Entities: materials, streams, process units, equipment
//   - Balance records computed per unit: material, heat and water balances
//   - Network data for heat integration and water reuse studies
//   - A change log (data_versions) written by the propagation engine
//
// # Conventions
//
// Serialization happens only here. Nested maps (composition, heat sources,
// specifications) are stored as JSON TEXT columns; everything above this
// package works with the typed records of internal/model.
//
// Reads are deterministic: list queries order by primary key with
// COLLATE BINARY and return empty slices, never nil.
//
// Lookups of missing records return an error wrapping model.ErrNotFound.
//
// Balance upserts are query-then-insert-or-update inside one transaction so
// a record keeps its created_at across recalculations.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: configurable, default 5 seconds
//   - foreign_keys=ON: balance rows cascade with their unit
package store
