package kv

import "github.com/flowkit/flowkit/apperr"

// Mode selects Open's replace-vs-reuse behaviour.
type Mode int

const (
	// ModeRead opens an existing buffer; fails with ENOENT if missing.
	ModeRead Mode = iota
	// ModeWrite creates a fresh, empty buffer, replacing any existing one.
	ModeWrite
	// ModeAppend returns the existing buffer, creating an empty one if
	// path has never been opened.
	ModeAppend
)

// Store is a path-keyed byte-buffer directory. Implementations must be
// safe for concurrent use.
type Store interface {
	// Open returns the Buffer for path per mode's semantics.
	Open(path string, mode Mode) (*Buffer, error)
	// Flush persists path's current contents to durable storage, if the
	// backend has one. A no-op on a purely in-memory backend.
	Flush(path string) error
	// Listdir returns every known path with the given prefix, sorted.
	Listdir(prefix string) ([]string, error)
	// Destroy releases all resources held by the store.
	Destroy() error
}

func notFound(path string) error {
	return apperr.NotFound("kv path", path)
}
