// Package jwt inspects partner access tokens.
//
// The login client never trusts claims it reads with [Inspect]: signature verification is
// the partner API's job. Inspection only feeds logging and observer events (subject, expiry).
package jwt
