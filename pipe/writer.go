package pipe

import (
	"sync"

	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/notify"
)

// Writer is the write side of a pipe: an append-only buffer plus the
// closed/error state readers observe. Write never blocks.
type Writer struct {
	path  string
	buf   *kv.Buffer
	queue *notify.Queue
	handle uint64

	mu     sync.Mutex
	closed bool
	errno  int
}

// NewWriter creates a Writer over buf, whose events are delivered on
// handle. handle must already be whitelisted on queue by the caller
// (normally Piper).
func NewWriter(path string, buf *kv.Buffer, queue *notify.Queue, handle uint64) *Writer {
	return &Writer{path: path, buf: buf, queue: queue, handle: handle}
}

// NewClosedWriter creates a Writer pre-filled with data and already
// closed — the "static pipe" / "env pipe" shape: immediately readable in
// full, with no producer ever blocking on it.
func NewClosedWriter(path string, data []byte, queue *notify.Queue, handle uint64) *Writer {
	w := NewWriter(path, kv.NewBuffer(data), queue, handle)
	w.closed = true
	return w
}

// Path returns the pipe's kv store path.
func (w *Writer) Path() string { return w.path }

// Handle returns the notify.Queue handle events for this writer are
// delivered on.
func (w *Writer) Handle() uint64 { return w.handle }

// Tell returns the number of bytes written so far.
func (w *Writer) Tell() int { return w.buf.Len() }

// Bytes returns a copy of everything written so far, regardless of
// closed/error state. Convenient for callers inspecting a finished
// pipe's contents directly rather than draining it through a Reader.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Write appends p to the pipe and wakes any blocked readers. Fails with
// EBADF if the pipe is already closed, and with a broken-pipe error
// carrying the pipe's errno if it is in an error state.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return 0, apperr.New(apperr.ErrCodeBadDescriptor, "write to closed pipe "+w.path)
	}
	if w.errno != 0 {
		w.mu.Unlock()
		return 0, apperr.BrokenPipe(w.path, w.errno)
	}
	w.mu.Unlock()

	n, _ := w.buf.Write(p)
	_ = w.queue.Notify(w.handle, n)
	return n, nil
}

// Close marks the pipe closed. Idempotent. Wakes blocked readers, who then
// observe EOF once they have drained all written bytes.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	_ = w.queue.Notify(w.handle, -1)
	w.queue.Unlist(w.handle)
	return nil
}

// SetError puts the pipe into an error state: every reader that later
// catches up to the writer's position observes errno instead of EOF,
// mirroring EPIPE-style propagation from a failed upstream actor.
func (w *Writer) SetError(errno int) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.errno = errno
	w.mu.Unlock()

	_ = w.queue.Notify(w.handle, errno)
	w.queue.Unlist(w.handle)
}

func (w *Writer) state() (closed bool, errno int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed, w.errno
}
