// Package requestid carries the correlation id shared by audit events and outgoing
// provider and partner calls.
package requestid

import "context"

// Header is the HTTP header the id travels in.
const Header = "X-Request-ID"

type contextKey struct{}

// With returns ctx carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// From returns the id in ctx, or "" when none is set.
func From(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
