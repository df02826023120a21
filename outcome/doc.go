// Package outcome maps primary-provider sign-in errors to user-facing outcomes.
//
// [Classify] applies an ordered rule table (first match wins, case-sensitive substring
// matching on code and message). Every recoverable outcome starts with [MsgGeneric] and
// carries at most one elaboration line.
package outcome
