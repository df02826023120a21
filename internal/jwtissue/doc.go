// Package jwtissue signs and verifies partner-style access tokens for the in-repo fake
// partner servers and the load-test harness. The login client itself never issues tokens.
package jwtissue
