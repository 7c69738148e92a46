package kv

import (
	"sort"
	"strings"
	"sync"
)

// Mem is a purely in-memory Store. Flush is a no-op since there is no
// durable layer underneath; contents are lost on Destroy or process exit.
type Mem struct {
	mu      sync.Mutex
	buffers map[string]*Buffer
}

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{buffers: make(map[string]*Buffer)}
}

// Open implements Store.
func (m *Mem) Open(path string, mode Mode) (*Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mode {
	case ModeRead:
		buf, ok := m.buffers[path]
		if !ok {
			return nil, notFound(path)
		}
		return buf, nil
	case ModeWrite:
		buf := NewBuffer(nil)
		m.buffers[path] = buf
		return buf, nil
	case ModeAppend:
		if buf, ok := m.buffers[path]; ok {
			return buf, nil
		}
		buf := NewBuffer(nil)
		m.buffers[path] = buf
		return buf, nil
	default:
		buf := NewBuffer(nil)
		m.buffers[path] = buf
		return buf, nil
	}
}

// Flush implements Store; a no-op for Mem.
func (m *Mem) Flush(string) error { return nil }

// Listdir implements Store.
func (m *Mem) Listdir(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for path := range m.buffers {
		if strings.HasPrefix(path, prefix) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Destroy implements Store.
func (m *Mem) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffers = make(map[string]*Buffer)
	return nil
}

var _ Store = (*Mem)(nil)
