package runtime

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/pipe"
)

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }

type pipeReader interface {
	Read(size int) ([]byte, error)
}

type pipeWriter interface {
	Write(p []byte) (int, error)
	Close() error
	SetError(errno int)
}

type fdEntry struct {
	reader pipeReader
	writer pipeWriter
}

// NodeRuntime is the concrete implementation of dag.NodeRuntime handed to
// exactly one node invocation. It is not safe to retain or use after the
// node's Func returns and the scheduler calls Destroy.
type NodeRuntime struct {
	shared      *Shared
	nodeName    string
	deps        []dag.Dependency
	fdOverrides FdOverrides

	mu     sync.Mutex
	fds    map[int]*fdEntry
	nextFd int
	errno  int
	dagops *dagOpsHandle
}

// New constructs a NodeRuntime for one invocation of nodeName, opening
// the six standard descriptors per their default or overridden kind.
func New(shared *Shared, nodeName string, deps []dag.Dependency, overrides FdOverrides) (*NodeRuntime, error) {
	rt := &NodeRuntime{
		shared:      shared,
		nodeName:    nodeName,
		deps:        deps,
		fdOverrides: overrides,
		fds:         make(map[int]*fdEntry),
		nextFd:      6,
	}
	for fd := 0; fd <= FdTrace; fd++ {
		if err := rt.openStandardFd(fd); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (rt *NodeRuntime) kindFor(fd int) FdKind {
	if k, ok := rt.fdOverrides[fd]; ok {
		return k
	}
	return defaultKind[fd]
}

func (rt *NodeRuntime) openStandardFd(fd int) error {
	switch rt.kindFor(fd) {
	case FdInput:
		_, err := rt.openReadAt(fd, defaultSlot[fd])
		return err
	case FdOutput:
		_, err := rt.openWriteAt(fd, defaultSlot[fd], false)
		return err
	case FdPrint:
		_, err := rt.openWriteAt(fd, defaultSlot[fd], true)
		return err
	case FdEnv:
		return rt.openEnvAt(fd)
	default:
		return apperr.InvalidArgument("unknown fd kind for descriptor")
	}
}

// Name implements dag.NodeRuntime.
func (rt *NodeRuntime) Name() string { return rt.nodeName }

// OpenRead implements dag.NodeRuntime: opens a fresh descriptor for slot.
func (rt *NodeRuntime) OpenRead(slot string) (int, error) {
	rt.mu.Lock()
	fd := rt.nextFd
	rt.nextFd++
	rt.mu.Unlock()
	return rt.openReadAt(fd, slot)
}

func (rt *NodeRuntime) openReadAt(fd int, slot string) (int, error) {
	var matching []dag.Dependency
	for _, d := range rt.deps {
		if d.Name == slot {
			matching = append(matching, d)
		}
	}

	if len(matching) == 0 && looksLikeKVPath(slot) {
		buf, err := rt.shared.KV.Open(slot, kv.ModeRead)
		if err != nil {
			return 0, err
		}
		w := pipe.NewClosedWriter(slot, buf.Bytes(), rt.shared.Queue, rt.shared.Seq.Next())
		rt.setFd(fd, &fdEntry{reader: pipe.NewReader(w)})
		return fd, nil
	}

	readers := make([]*pipe.Reader, 0, len(matching))
	for _, d := range matching {
		w, err := rt.shared.Piper.OpenRead(d.Source, d.Slot)
		if err != nil {
			return 0, err
		}
		readers = append(readers, pipe.NewReader(w))
	}
	rt.setFd(fd, &fdEntry{reader: pipe.NewMergeReader(readers)})
	return fd, nil
}

func looksLikeKVPath(slot string) bool {
	return strings.Contains(slot, "/") || strings.HasPrefix(slot, "value.")
}

// OpenWrite implements dag.NodeRuntime: opens a fresh output descriptor
// for slot, backed by a freshly created pipe this node is now the
// producer of.
func (rt *NodeRuntime) OpenWrite(slot string) (int, error) {
	rt.mu.Lock()
	fd := rt.nextFd
	rt.nextFd++
	rt.mu.Unlock()
	return rt.openWriteAt(fd, slot, false)
}

func (rt *NodeRuntime) openWriteAt(fd int, slot string, tee bool) (int, error) {
	w, err := rt.shared.Piper.CreatePipe(rt.nodeName, slot, kv.ModeWrite)
	if err != nil {
		return 0, err
	}
	var pw pipeWriter = w
	if tee {
		pw = pipe.NewTeeWriter(w, os.Stdout)
	}
	rt.setFd(fd, &fdEntry{writer: pw})
	return fd, nil
}

func (rt *NodeRuntime) openEnvAt(fd int) error {
	w, ok := rt.shared.Piper.GetExistingPipe("env")
	if !ok {
		var err error
		w, err = rt.shared.Piper.MakeEnvPipe("env", nil)
		if err != nil {
			return err
		}
	}
	rt.setFd(fd, &fdEntry{reader: pipe.NewReader(w)})
	return nil
}

func (rt *NodeRuntime) setFd(fd int, e *fdEntry) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.fds[fd] = e
}

// Read implements dag.NodeRuntime.
func (rt *NodeRuntime) Read(fd, size int) ([]byte, error) {
	rt.mu.Lock()
	e, ok := rt.fds[fd]
	rt.mu.Unlock()
	if !ok || e.reader == nil {
		return nil, apperr.BadDescriptor(fd)
	}
	return e.reader.Read(size)
}

// Write implements dag.NodeRuntime.
func (rt *NodeRuntime) Write(fd int, data []byte) (int, error) {
	rt.mu.Lock()
	e, ok := rt.fds[fd]
	rt.mu.Unlock()
	if !ok || e.writer == nil {
		return 0, apperr.BadDescriptor(fd)
	}
	return e.writer.Write(data)
}

// Close implements dag.NodeRuntime.
func (rt *NodeRuntime) Close(fd int) error {
	rt.mu.Lock()
	e, ok := rt.fds[fd]
	if ok {
		delete(rt.fds, fd)
	}
	rt.mu.Unlock()
	if !ok {
		return apperr.BadDescriptor(fd)
	}
	if e.writer != nil {
		return e.writer.Close()
	}
	return nil
}

// Errno implements dag.NodeRuntime.
func (rt *NodeRuntime) Errno() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.errno
}

// SetErrno implements dag.NodeRuntime.
func (rt *NodeRuntime) SetErrno(errno int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.errno = errno
}

// DagOps implements dag.NodeRuntime, lazily constructing the handle table.
func (rt *NodeRuntime) DagOps() (dag.DagOpsHandle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.dagops == nil {
		rt.dagops = newDagOpsHandle(rt.shared, rt.nodeName)
	}
	return rt.dagops, nil
}

// NextName implements dag.NodeRuntime: returns a fresh "<base>.<n>" name
// using the shared sequence counter, for an actor that wants to mint a
// name ahead of creating the node it will belong to.
func (rt *NodeRuntime) NextName(base string) string {
	return base + "." + itoa(rt.shared.Seq.Next())
}

// Destroy closes every fd still open. If the node ended in error (errno
// != 0), open writers are put into the error state first so readers
// downstream observe EPIPE instead of a silent truncated EOF.
func (rt *NodeRuntime) Destroy() {
	rt.mu.Lock()
	fds := rt.fds
	rt.fds = make(map[int]*fdEntry)
	errno := rt.errno
	rt.mu.Unlock()

	for _, e := range fds {
		if e.writer == nil {
			continue
		}
		if errno != 0 {
			e.writer.SetError(errno)
			continue
		}
		_ = e.writer.Close()
	}
}

var _ dag.NodeRuntime = (*NodeRuntime)(nil)
