// Package validate checks raw sign-in input before anything is sent to the network.
//
// # Components
//
//   - [ValidateEmail], [ValidatePassword]: pure checks returning field messages (empty = valid).
//   - [EmailChecker]: pluggable syntactic email rule; [SyntaxChecker] is the default.
//   - [Form]: eager validation with display gating (errors hidden until first submit).
//
// # What this package must NOT do
//
//   - Perform I/O or call any provider.
//   - Keep global state beyond the default checker.
package validate
