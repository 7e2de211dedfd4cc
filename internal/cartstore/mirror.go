package cartstore

import (
	"context"
	"errors"
)

// Mirror is the durable key-value blob behind a cart. The store writes the
// full serialized cart on every mutation; a mirror only needs get/set.
// Consumers define this interface, not the storage implementations.
type Mirror interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

var ErrMirrorNotFound = errors.New("cart mirror: key not found")
