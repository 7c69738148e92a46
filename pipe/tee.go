package pipe

import (
	"io"
	"os"
)

// TeeWriter mirrors every Write to out (flushing if out supports it)
// before delegating to the wrapped Writer. Used for a node's stdout fd
// when a per-node override redirects it to "print" mode, so a human
// watching the process output sees actor output live.
type TeeWriter struct {
	*Writer
	out io.Writer
}

// NewTeeWriter wraps w, tee-ing writes to out (typically os.Stdout).
func NewTeeWriter(w *Writer, out io.Writer) *TeeWriter {
	return &TeeWriter{Writer: w, out: out}
}

// Write mirrors p to the tee target, flushing it, then appends to the
// underlying pipe.
func (t *TeeWriter) Write(p []byte) (int, error) {
	if _, err := t.out.Write(p); err != nil {
		return 0, err
	}
	if f, ok := t.out.(*os.File); ok {
		_ = f.Sync()
	}
	return t.Writer.Write(p)
}
