// Package internal groups helpers that are private to authclient.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: the submission orchestrator behind Client.Submit
//   - jwtissue: access token signer for fakes and the load test
//   - rate: Redis-backed failed-attempt throttle
//   - requestid: correlation id context key
//
// # What this package must NOT do
//
//   - Export types that appear in the public authclient API except through aliases.
//   - Be imported by any package outside the authclient module.
package internal
