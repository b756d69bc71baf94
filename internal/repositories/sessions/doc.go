// Package sessions provides the local persistence layer for meditation
// sessions.
//
// # Overview
//
// The package defines a Repository interface for saving and querying Session
// models (see internal/models). A SQLite-backed implementation
// (SQLiteRepository) persists data over a dbx.DBTX, so it works both with
// *sql.DB and inside a transaction.
//
// # Data Model
//
// Each session row carries the server-assigned session_id (stable identity
// across syncs), the owning user, an epoch-millisecond timestamp, the
// generation status string, and download bookkeeping columns that only the
// download manager writes. The status column is parsed leniently on read:
// unknown values map to REQUESTED (see models.ParseSessionStatus).
//
// # Concurrency
//
// Implementations are safe for concurrent use when backed by a properly
// configured *sql.DB. When using *sql.Tx (DBTX), follow normal transaction
// scoping rules.
//
// Key Types
//
//   - type Repository        — interface used by the record store
//   - type SQLiteRepository  — SQLite implementation over dbx.DBTX
package sessions
