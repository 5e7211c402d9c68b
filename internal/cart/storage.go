package cart

import (
	"context"
	"errors"
)

// ErrNotFound is returned by storage implementations when a key is absent.
var ErrNotFound = errors.New("cart storage: key not found")

// Storage is the only boundary through which cart state touches a persistence
// medium. Payloads are opaque strings; the service owns serialization, so the
// Redis and GORM implementations stay interchangeable.
type Storage interface {
	ReadCart(ctx context.Context, sessionID string) (string, error)
	WriteCart(ctx context.Context, sessionID, payload string) error
	DeleteCart(ctx context.Context, sessionID string) error

	WritePendingOrder(ctx context.Context, sessionID, orderID string) error
	// ConsumePendingOrder reads and deletes in one step; a second call for
	// the same session reports ErrNotFound.
	ConsumePendingOrder(ctx context.Context, sessionID string) (string, error)
}
