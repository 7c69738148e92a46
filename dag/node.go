package dag

import "context"

// Func is the body of a node: it runs once the scheduler decides the node
// can start, and the node is considered finished when Func returns. rt is
// the actor-facing surface; its concrete type lives in package runtime.
type Func func(ctx context.Context, rt NodeRuntime) error

// NodeRuntime is the interface a Node's Func uses to read its inputs,
// write its outputs, and mutate the graph it runs in. Declared here
// (rather than in package runtime, which implements it) so Func's
// signature does not create an import cycle between dag and runtime.
type NodeRuntime interface {
	Name() string
	OpenRead(slot string) (int, error)
	OpenWrite(slot string) (int, error)
	Read(fd, size int) ([]byte, error)
	Write(fd int, data []byte) (int, error)
	Close(fd int) error
	Errno() int
	SetErrno(errno int)
	DagOps() (DagOpsHandle, error)
	NextName(base string) string
}

// DagOpsHandle is the DAG-mutation surface a running actor reaches
// through NodeRuntime.DagOps. Declared here for the same import-cycle
// reason as NodeRuntime; implemented in package runtime.
type DagOpsHandle interface {
	AddValueNode(data []byte, explain string) (uint64, error)
	OpenWritePipe(explain string) (uint64, error)
	Alias(name string, handle uint64) error
	V2Alias(name string, handle uint64) (uint64, error)
	InstantiateWithDeps(target string, aliases map[string]uint64) (uint64, error)
	DetachFromAlias(alias string) error
}

// Dependency is one edge: the node named Source provides data the
// dependent node consumes under the logical name Name, from Source's
// output slot Slot (== "" for Source's only/default output).
type Dependency struct {
	Source string
	Name   string
	Slot   string
	Schema string
}

// Node is one vertex: either a Func-driven actor, a pre-filled value leaf
// (IsValue), or a value leaf whose single write happens later through an
// externally held pipe (IsOpenValue).
type Node struct {
	Name         string
	Func         Func
	Dependencies []Dependency
	Explain      string

	IsValue     bool
	IsOpenValue bool
	ValueData   []byte
}
