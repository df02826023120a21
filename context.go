package authclient

import (
	"context"

	"github.com/google/uuid"

	"github.com/simstudio/authclient/internal/requestid"
)

type clientIPContextKey struct{}

// WithClientIP attaches the end user's IP address to ctx. Used for per-IP attempt
// throttling and audit records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithRequestID attaches a correlation id to ctx. Submissions without one get a random id.
// The id is sent as X-Request-ID on primary and partner calls made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return requestid.With(ctx, id)
}

// RequestIDFromContext returns the correlation id carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return requestid.From(ctx)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

// ensureRequestID returns ctx carrying a request id and the id itself.
func ensureRequestID(ctx context.Context) (context.Context, string) {
	if id := requestid.From(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}

func requestIDFromContext(ctx context.Context) string {
	return requestid.From(ctx)
}
