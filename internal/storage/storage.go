package storage

import (
	"context"
	"errors"
)

// Collection names. Each is an independent key space.
const (
	Users    = "users"
	Groups   = "groups"
	Messages = "messages"
)

// ErrKeyNotFound is returned by Get when the key is absent, and may be
// returned by an Update closure to abort without writing.
var ErrKeyNotFound = errors.New("storage: key not found")

// UpdateFunc receives the current value for a key (nil when the key is
// absent) and returns the replacement value. Returning an error aborts
// the update without writing.
type UpdateFunc func(current []byte) ([]byte, error)

// ScanFunc is invoked once per item during a Scan. Returning an error
// stops the scan and propagates the error to the caller.
type ScanFunc func(key string, value []byte) error

// KV is the generic key-value contract the directories and the message
// store are built on. Implementations must make Update atomic per key
// under concurrent callers; Scan order is unspecified and a scan is not
// isolated from concurrent writes.
type KV interface {
	Get(ctx context.Context, collection, key string) ([]byte, error)
	Put(ctx context.Context, collection, key string, value []byte) error
	// Delete is idempotent: deleting an absent key succeeds.
	Delete(ctx context.Context, collection, key string) error
	Update(ctx context.Context, collection, key string, fn UpdateFunc) error
	Scan(ctx context.Context, collection string, fn ScanFunc) error
	Ping(ctx context.Context) error
	Close() error
}
