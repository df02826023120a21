// Package rate counts failed sign-in attempts in Redis so a client can stop sending
// credentials for an email that keeps failing.
//
// # Window semantics
//
// Fixed-window counters: INCR + EXPIRE on the first hit. Keys are
// "<prefix>:email:<email>" and "<prefix>:ip:<ip>".
//
// # What this package must NOT do
//
//   - Decide which failures count; the caller increments.
//   - Be imported outside the authclient module.
package rate
