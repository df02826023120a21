// Package tokens persists the partner API access/refresh token pair.
//
// The pair is stored as one JSON record under one key so that a reader never observes an
// access token from one pair next to a refresh token from another. Loading fails closed:
// a missing or corrupt record reads as "no session".
package tokens
