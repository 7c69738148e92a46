package runtime

import (
	"sync"

	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/flow"
	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/pipe"
)

// dagOpsHandle implements dag.DagOpsHandle. Handle 0 is reserved: it is
// never allocated, and callers passing it mean "use the given name
// literally" rather than "dereference a handle".
type dagOpsHandle struct {
	shared   *Shared
	nodeName string

	mu      sync.Mutex
	next    uint64
	handles map[uint64]string
}

func newDagOpsHandle(shared *Shared, nodeName string) *dagOpsHandle {
	return &dagOpsHandle{shared: shared, nodeName: nodeName, next: 1, handles: make(map[uint64]string)}
}

func (h *dagOpsHandle) alloc(name string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.handles[id] = name
	return id
}

// resolve returns the node/alias name a handle refers to. literalName is
// used verbatim when handle == 0.
func (h *dagOpsHandle) resolve(handle uint64, literalName string) (string, error) {
	if handle == 0 {
		return literalName, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	name, ok := h.handles[handle]
	if !ok {
		return "", apperr.NotFound("dagops handle", "")
	}
	return name, nil
}

// AddValueNode implements dag.DagOpsHandle.
func (h *dagOpsHandle) AddValueNode(data []byte, explain string) (uint64, error) {
	n := h.shared.Dag.AddValueNode(h.nodeName+".value", data, explain)
	return h.alloc(n.Name), nil
}

// OpenWritePipe implements dag.DagOpsHandle: registers an open value node
// and eagerly creates its output pipe in write mode, so whatever external
// writer the caller hands the handle to can start writing immediately;
// the node is considered active until that writer closes it.
func (h *dagOpsHandle) OpenWritePipe(explain string) (uint64, error) {
	n := h.shared.Dag.CreateOpenValueNode(h.nodeName+".pipe", explain)
	if _, err := h.shared.Piper.CreatePipe(n.Name, "", kv.ModeWrite); err != nil {
		return 0, err
	}
	return h.alloc(n.Name), nil
}

// Alias implements dag.DagOpsHandle.
func (h *dagOpsHandle) Alias(name string, handle uint64) error {
	target, err := h.resolve(handle, "")
	if err != nil {
		return err
	}
	return h.shared.Dag.Alias(name, target)
}

// V2Alias implements dag.DagOpsHandle: aliases name to handle, then
// returns a fresh handle referring to the alias itself.
func (h *dagOpsHandle) V2Alias(name string, handle uint64) (uint64, error) {
	if err := h.Alias(name, handle); err != nil {
		return 0, err
	}
	return h.alloc(name), nil
}

// InstantiateWithDeps implements dag.DagOpsHandle.
func (h *dagOpsHandle) InstantiateWithDeps(target string, aliases map[string]uint64) (uint64, error) {
	resolved := make(map[string]string, len(aliases))
	for key, handle := range aliases {
		name, err := h.resolve(handle, key)
		if err != nil {
			return 0, err
		}
		resolved[key] = name
	}
	name, err := flow.InstantiateWithDeps(h.shared.Dag, h.shared.Registry, target, resolved)
	if err != nil {
		return 0, err
	}
	return h.alloc(name), nil
}

// DetachFromAlias implements dag.DagOpsHandle.
func (h *dagOpsHandle) DetachFromAlias(alias string) error {
	return h.shared.Dag.DetachFromAlias(alias)
}

// ResolveWriter looks up the pipe.Writer backing the node a handle names,
// for a caller that was handed the handle from OpenWritePipe and now
// needs to write into it directly (e.g. a WASM module bridge). Not part
// of dag.DagOpsHandle: only reachable by code holding the concrete
// *dagOpsHandle, not the narrower interface.
func (h *dagOpsHandle) ResolveWriter(handle uint64) (*pipe.Writer, error) {
	name, err := h.resolve(handle, "")
	if err != nil {
		return nil, err
	}
	w, ok := h.shared.Piper.GetExistingPipe(pipe.DerivePath(name, ""))
	if !ok {
		return nil, apperr.NotFound("pipe", name)
	}
	return w, nil
}

var _ dag.DagOpsHandle = (*dagOpsHandle)(nil)
