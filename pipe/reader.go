package pipe

import "github.com/flowkit/flowkit/apperr"

// Reader is the read side of a pipe. A single Writer may back any number
// of independent Readers, each tracking its own position.
type Reader struct {
	writer   *Writer
	position int
}

// NewReader creates a Reader over w, starting at position 0.
func NewReader(w *Writer) *Reader {
	return &Reader{writer: w}
}

// Tell returns the reader's current position.
func (r *Reader) Tell() int { return r.position }

// Read returns up to size bytes starting at the reader's position. If the
// reader has caught up to the writer (no bytes available) and the writer
// is neither closed nor errored, Read blocks until one of those becomes
// true. Returns (nil, io.EOF)-equivalent via apperr when the writer is
// closed and fully drained, or a BrokenPipe error when the writer errored.
func (r *Reader) Read(size int) ([]byte, error) {
	for {
		avail := r.writer.buf.Len() - r.position
		if avail > 0 {
			if size > 0 && size < avail {
				avail = size
			}
			data := r.writer.buf.Slice(r.position, r.position+avail)
			r.position += avail
			return data, nil
		}

		closed, errno := r.writer.state()
		if errno != 0 {
			return nil, apperr.BrokenPipe(r.writer.path, errno)
		}
		if closed {
			return nil, errEOF(r.writer.path)
		}

		q := r.writer.queue
		q.Lock()
		avail = r.writer.buf.Len() - r.position
		closed, errno = r.writer.state()
		if avail == 0 && errno == 0 && !closed {
			q.WaitUnsafe(r.writer.handle)
		}
		q.Unlock()
	}
}

func errEOF(path string) error {
	return apperr.New(apperr.ErrCodeNotFound, "pipe "+path+" at end of stream").WithDetail("eof", true)
}

// IsEOF reports whether err is the end-of-stream condition Read returns
// once a writer has closed and been fully drained.
func IsEOF(err error) bool {
	ae, ok := apperr.As(err)
	if !ok {
		return false
	}
	v, ok := ae.Details["eof"].(bool)
	return ok && v
}
