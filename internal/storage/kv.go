package storage

import "errors"

var (
	ErrNotFound    = errors.New("storage: not found")
	ErrUnavailable = errors.New("storage: backend unavailable")
)

// KV is the local key-value blob store the task manager persists into.
// Implementations hold a handful of small records; there is no concurrent
// writer (single user, single process).
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
