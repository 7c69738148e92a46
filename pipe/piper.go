package pipe

import (
	"sync"

	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/notify"
	"github.com/flowkit/flowkit/seqno"
)

// Piper is the path-keyed directory of every pipe created during a run.
// It owns handle allocation and registers a shared fsops handle that
// fires once on every pipe creation, so the scheduler can re-plan as soon
// as a producer node opens its output.
type Piper struct {
	store kv.Store
	queue *notify.Queue
	seq   *seqno.Generator

	mu          sync.Mutex
	writers     map[string]*Writer
	fsopsHandle uint64
}

// NewPiper creates a pipe directory backed by store, using queue for pipe
// and fsops notifications.
func NewPiper(store kv.Store, queue *notify.Queue, seq *seqno.Generator) *Piper {
	p := &Piper{
		store:   store,
		queue:   queue,
		seq:     seq,
		writers: make(map[string]*Writer),
	}
	p.fsopsHandle = seq.Next()
	_ = queue.Whitelist(p.fsopsHandle, "fsops")
	return p
}

// GetFsopsHandle returns the handle that fires on every pipe creation.
func (p *Piper) GetFsopsHandle() uint64 { return p.fsopsHandle }

// CreatePipe opens the output side of node's slot. mode must be
// kv.ModeWrite or kv.ModeAppend; fails with EEXIST if a writer already
// exists at the derived path.
func (p *Piper) CreatePipe(node, slot string, mode kv.Mode) (*Writer, error) {
	path := DerivePath(node, slot)

	p.mu.Lock()
	if _, exists := p.writers[path]; exists {
		p.mu.Unlock()
		return nil, apperr.AlreadyExists("pipe", path)
	}
	buf, err := p.store.Open(path, mode)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	handle := p.seq.Next()
	_ = p.queue.Whitelist(handle, path)
	w := NewWriter(path, buf, p.queue, handle)
	p.writers[path] = w
	p.mu.Unlock()

	_ = p.queue.Notify(p.fsopsHandle, 1)
	return w, nil
}

// OpenRead returns the Writer backing path's current producer, creating
// and immediately closing an empty one (the "no producer" shape) if none
// exists yet.
func (p *Piper) OpenRead(node, slot string) (*Writer, error) {
	path := DerivePath(node, slot)

	p.mu.Lock()
	if w, exists := p.writers[path]; exists {
		p.mu.Unlock()
		return w, nil
	}
	buf, err := p.store.Open(path, kv.ModeWrite)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	handle := p.seq.Next()
	_ = p.queue.Whitelist(handle, path)
	w := NewWriter(path, buf, p.queue, handle)
	_ = w.Close()
	p.writers[path] = w
	p.mu.Unlock()

	_ = p.queue.Notify(p.fsopsHandle, 1)
	return w, nil
}

// GetExistingPipe returns the Writer already registered at path, if any.
func (p *Piper) GetExistingPipe(path string) (*Writer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.writers[path]
	return w, ok
}

// MakeEnvPipe registers a static, pre-closed pipe at path holding data —
// used for the per-run environment JSON blob a node reads via its
// standard env fd.
func (p *Piper) MakeEnvPipe(path string, data []byte) (*Writer, error) {
	p.mu.Lock()
	if _, exists := p.writers[path]; exists {
		p.mu.Unlock()
		return nil, apperr.AlreadyExists("pipe", path)
	}
	handle := p.seq.Next()
	_ = p.queue.Whitelist(handle, path)
	w := NewClosedWriter(path, data, p.queue, handle)
	p.writers[path] = w
	p.mu.Unlock()

	_ = p.queue.Notify(p.fsopsHandle, 1)
	return w, nil
}

// Destroy unlists the fsops handle. Individual pipe handles are unlisted
// by their own Close/SetError.
func (p *Piper) Destroy() error {
	p.queue.Unlist(p.fsopsHandle)
	return nil
}
