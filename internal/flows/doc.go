// Package flows contains the pure-function orchestrator behind Client.Submit.
//
// RunSubmit accepts a typed dependency struct and returns a SubmitOutput without
// side-effects beyond those dependencies, so every branch can be tested with
// function fakes.
//
// # Architecture boundaries
//
// The flow coordinates the validator, primary provider, partner bootstrap,
// attempt throttle, storage flags, navigation, audit and metrics. It owns none
// of them; ownership stays with the Client.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authclient (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency funcs.
package flows
