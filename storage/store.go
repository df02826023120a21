package storage

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the backing store cannot be reached or fails.
var ErrUnavailable = errors.New("storage unavailable")

// Store is a string key-value capability with get/set/remove semantics.
//
// Get reports ok=false for a missing key; a missing key is not an error.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Namespaced prefixes every key with ns + ":" before delegating to inner.
// An empty namespace returns inner unchanged.
func Namespaced(inner Store, ns string) Store {
	if ns == "" {
		return inner
	}
	return &namespaced{inner: inner, prefix: ns + ":"}
}

type namespaced struct {
	inner  Store
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.prefix+key)
}
