// Package storage provides the key-value capability the login client persists its state
// through: the partner token pair, the returning-user marker, and the pending verification
// email.
//
// # Implementations
//
//   - [Memory]: in-process map. Used as the session-scoped store and as a test fake.
//   - [Redis]: go-redis backed. Durable when TTL is zero, session-scoped when TTL > 0.
//   - [SQLite]: modernc.org/sqlite backed single-table store that survives restarts.
//
// # What this package must NOT do
//
//   - Interpret stored values (JSON decoding belongs to the callers).
//   - Import authclient or any component package (no upward imports).
package storage
