// Package audit relays sign-in audit events to a sink without blocking submissions.
//
// # Components
//
//   - [Sink]: event consumer (channel, JSON lines, slog, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full or block-if-full delivery.
//   - [Event]: one audit record.
//
// # Architecture boundaries
//
// This package owns buffering and delivery. The client decides which events to emit.
//
// # What this package must NOT do
//
//   - Filter events on business rules.
//   - Import authclient or a sibling internal package.
//   - Carry passwords or tokens in any field.
package audit
