package requestid

import (
	"context"
	"testing"
)

func TestWithAndFrom(t *testing.T) {
	if got := From(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
	ctx := With(context.Background(), "req-1")
	if got := From(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	//nolint:staticcheck // nil context is tolerated
	if got := From(nil); got != "" {
		t.Fatalf("expected empty id for nil ctx, got %q", got)
	}
}
