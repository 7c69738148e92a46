package wasmbridge

import (
	"encoding/base64"
	"encoding/json"

	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/logger"
	"github.com/flowkit/flowkit/pipe"
)

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// ImportNames lists the function names a WASM actor module imports
// from the host module (registered under the empty module namespace,
// matching the original import object), in the order Host declares
// them.
var ImportNames = []string{
	"open_read",
	"open_write",
	"aread",
	"awrite",
	"aclose",
	"get_errno",
	"dag_instantiate_with_deps",
	"dag_value_node",
	"dag_alias",
	"dag_detach_from_alias",
}

// Host bridges one node invocation's dag.NodeRuntime to a WASM
// instance's linear memory. Every method takes and returns plain
// int32-compatible values so a host's import object can call them
// directly; string/byte arguments are passed as (ptr, len) or
// NUL-terminated pointers into Memory.
type Host struct {
	rt  dag.NodeRuntime
	mem Memory
	log *logger.Logger
}

// NewHost builds a Host over rt using mem for all pointer arguments.
func NewHost(rt dag.NodeRuntime, mem Memory) *Host {
	return &Host{rt: rt, mem: mem, log: logger.Get("wasmbridge")}
}

// OpenRead implements the "open_read" import: namePtr is a
// NUL-terminated slot name. Returns the new fd, or -1 on error; the
// failure is logged and the node's errno is left unchanged.
func (h *Host) OpenRead(namePtr uint32) int32 {
	name, err := ReadCString(h.mem, namePtr)
	if err != nil {
		return -1
	}
	fd, err := h.rt.OpenRead(name)
	if err != nil {
		h.log.Warn("open_read failed", logger.Fields("slot", name, "error", err.Error()))
		return -1
	}
	return int32(fd)
}

// OpenWrite implements the "open_write" import.
func (h *Host) OpenWrite(namePtr uint32) int32 {
	name, err := ReadCString(h.mem, namePtr)
	if err != nil {
		return -1
	}
	fd, err := h.rt.OpenWrite(name)
	if err != nil {
		h.log.Warn("open_write failed", logger.Fields("slot", name, "error", err.Error()))
		return -1
	}
	return int32(fd)
}

// Read implements the "aread" import: reads up to count bytes from fd
// into the instance's memory at bufferPtr. Returns the number of bytes
// read, 0 at EOF, or -1 on error.
func (h *Host) Read(fd int32, bufferPtr, count uint32) int32 {
	data, err := h.rt.Read(int(fd), int(count))
	if err != nil {
		if pipe.IsEOF(err) {
			return 0
		}
		return -1
	}
	if err := h.mem.WriteAt(bufferPtr, data); err != nil {
		return -1
	}
	return int32(len(data))
}

// Write implements the "awrite" import: writes count bytes from the
// instance's memory at bufferPtr into fd. Returns the number of bytes
// written, or -1 on error.
func (h *Host) Write(fd int32, bufferPtr, count uint32) int32 {
	data, err := h.mem.ReadAt(bufferPtr, count)
	if err != nil {
		return -1
	}
	n, err := h.rt.Write(int(fd), data)
	if err != nil {
		return -1
	}
	return int32(n)
}

// Close implements the "aclose" import.
func (h *Host) Close(fd int32) int32 {
	if err := h.rt.Close(int(fd)); err != nil {
		return -1
	}
	return 0
}

// GetErrno implements the "get_errno" import.
func (h *Host) GetErrno() int32 {
	return int32(h.rt.Errno())
}

// instantiateDeps is the JSON shape of the second argument to
// dag_instantiate_with_deps: a map from template input name to the
// numeric handle satisfying it.
type instantiateDeps struct {
	Deps map[string]uint64 `json:"deps"`
}

// InstantiateWithDeps implements the "dag_instantiate_with_deps"
// import: workflowPtr names a registry template, depsPtr is a
// NUL-terminated JSON object `{"deps": {input: handle, ...}}`. Returns
// a handle to the instantiated node, or -1 on error.
func (h *Host) InstantiateWithDeps(workflowPtr, depsPtr uint32) int32 {
	workflow, err := ReadCString(h.mem, workflowPtr)
	if err != nil {
		return -1
	}
	raw, err := ReadCString(h.mem, depsPtr)
	if err != nil {
		return -1
	}
	var parsed instantiateDeps
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		h.log.Warn("dag_instantiate_with_deps: bad deps JSON", logger.Fields("workflow", workflow, "error", err.Error()))
		return -1
	}

	ops, err := h.rt.DagOps()
	if err != nil {
		return -1
	}
	handle, err := ops.InstantiateWithDeps(workflow, parsed.Deps)
	if err != nil {
		h.log.Warn("dag_instantiate_with_deps failed", logger.Fields("workflow", workflow, "error", err.Error()))
		return -1
	}
	return int32(handle)
}

// ValueNode implements the "dag_value_node" import: valuePtr is a
// NUL-terminated base64 string, explainPtr a NUL-terminated label.
// Returns a handle to the new value node, or -1 on error.
func (h *Host) ValueNode(valuePtr, explainPtr uint32) int32 {
	encoded, err := ReadCString(h.mem, valuePtr)
	if err != nil {
		return -1
	}
	explain, err := ReadCString(h.mem, explainPtr)
	if err != nil {
		return -1
	}
	data, err := decodeBase64(encoded)
	if err != nil {
		h.log.Warn("dag_value_node: bad base64 value", logger.Fields("explain", explain, "error", err.Error()))
		return -1
	}

	ops, err := h.rt.DagOps()
	if err != nil {
		return -1
	}
	handle, err := ops.AddValueNode(data, explain)
	if err != nil {
		h.log.Warn("dag_value_node failed", logger.Fields("explain", explain, "error", err.Error()))
		return -1
	}
	return int32(handle)
}

// Alias implements the "dag_alias" import: aliasPtr is a
// NUL-terminated alias name, nodeHandle the handle it should resolve
// to. Returns a fresh handle to the alias, or -1 on error.
func (h *Host) Alias(aliasPtr uint32, nodeHandle int32) int32 {
	name, err := ReadCString(h.mem, aliasPtr)
	if err != nil {
		return -1
	}
	ops, err := h.rt.DagOps()
	if err != nil {
		return -1
	}
	handle, err := ops.V2Alias(name, uint64(nodeHandle))
	if err != nil {
		h.log.Warn("dag_alias failed", logger.Fields("alias", name, "error", err.Error()))
		return -1
	}
	return int32(handle)
}

// DetachFromAlias implements the "dag_detach_from_alias" import.
// Returns 0 on success, -1 on error.
func (h *Host) DetachFromAlias(aliasPtr uint32) int32 {
	name, err := ReadCString(h.mem, aliasPtr)
	if err != nil {
		return -1
	}
	ops, err := h.rt.DagOps()
	if err != nil {
		return -1
	}
	if err := ops.DetachFromAlias(name); err != nil {
		h.log.Warn("dag_detach_from_alias failed", logger.Fields("alias", name, "error", err.Error()))
		return -1
	}
	return 0
}
