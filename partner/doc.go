// Package partner maintains a bearer-token session against the partner API.
//
// # Components
//
//   - [Client.BootstrapSession]: best-effort login that stores a token pair. Never fails the caller.
//   - [Client.AuthorizedFetch]: authenticated request with refresh-on-401, bounded to one
//     refresh and one retried request per call.
//   - [Client.Refresh]: raw refresh call.
//
// # Concurrency
//
// A Client is safe for concurrent use. Concurrent refreshes of the same refresh token share
// one network call. A caller whose 401 arrives after another caller already rotated the pair
// retries with the stored pair instead of refreshing again.
//
// # What this package must NOT do
//
//   - Retry more than once per AuthorizedFetch call.
//   - Log credentials or tokens.
//   - Surface bootstrap failures as errors.
package partner
