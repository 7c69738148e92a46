// Package seqno provides a single monotonically increasing counter used
// everywhere a fresh identifier is needed: pipe handles, node name suffixes,
// notification tokens.
package seqno

import "sync/atomic"

// Generator is a thread-safe monotonic counter. The zero value starts at 0.
// No wraparound handling is implemented; values are 64-bit.
type Generator struct {
	n atomic.Uint64
}

// New creates a Generator starting at 0.
func New() *Generator {
	return &Generator{}
}

// Next returns the current value and increments the counter.
func (g *Generator) Next() uint64 {
	return g.n.Add(1) - 1
}
