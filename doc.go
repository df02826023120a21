// Package authclient signs a user into a primary account service while bootstrapping and
// maintaining a bearer-token session against a partner API.
//
// A [Client] is built once through [Builder.Build] and is safe for concurrent use. Only one
// credential submission runs at a time; a second [Client.Submit] while one is in flight is
// rejected with [ErrSubmissionInFlight].
//
// # Architecture boundaries
//
// authclient is the public surface. It exposes [Client], [Builder], [Config], the
// collaborator interfaces ([PrimaryProvider], [Navigator], [Transform]) and value types
// (SubmitResult, MetricsSnapshot, AuditEvent). Submission orchestration, audit dispatch and
// attempt throttling live under internal/.
//
// Sub-packages own one concern each:
//
//   - validate: field validation and error display gating
//   - outcome: provider error classification
//   - tokens, storage: partner token persistence
//   - partner: partner session bootstrap and refresh-on-401
//   - primary: HTTP adapter for the primary provider
//   - cipher: passphrase sealing for sign-in links
//
// # What this package must NOT do
//
//   - Log or persist credentials.
//   - Let a partner session failure change the primary sign-in result.
//   - Import any sub-package that re-imports authclient (primary imports this package).
package authclient
