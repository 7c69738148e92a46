// Package kv implements the path-keyed byte-buffer store that backs the
// pipe layer (package pipe). A Buffer is the same object a pipe Writer
// appends to and a pipe Reader reads from directly — the store is the
// buffer's owner and lookup index, not an intermediate copy.
//
// Two backends are provided: Mem, a plain in-memory map suitable for a
// single run, and Badger, which layers a persistent github.com/dgraph-io/
// badger/v4 database underneath so buffers survive a process restart.
// Both satisfy the Store interface so env wires whichever is configured.
package kv
