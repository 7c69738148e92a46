package std

import (
	"context"
	"fmt"

	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/pipe"
	"github.com/flowkit/flowkit/runtime"
)

const readChunk = 64 * 1024

// Passthrough copies fd 0 (stdin) to fd 1 (stdout) unchanged, closing
// the output when the input is exhausted.
func Passthrough(ctx context.Context, rt dag.NodeRuntime) error {
	for {
		data, err := rt.Read(runtime.FdStdin, readChunk)
		if len(data) > 0 {
			if _, werr := rt.Write(runtime.FdStdout, data); werr != nil {
				return werr
			}
		}
		if err != nil {
			if pipe.IsEOF(err) {
				break
			}
			return err
		}
	}
	return rt.Close(runtime.FdStdout)
}

// Stdout drains fd 0 and tees every byte through fd 2 (log), which is
// opened in print mode and mirrors writes to the process's real
// stdout. It produces no output pipe of its own.
func Stdout(ctx context.Context, rt dag.NodeRuntime) error {
	for {
		data, err := rt.Read(runtime.FdStdin, readChunk)
		if len(data) > 0 {
			if _, werr := rt.Write(runtime.FdLog, data); werr != nil {
				return werr
			}
		}
		if err != nil {
			if pipe.IsEOF(err) {
				break
			}
			return err
		}
	}
	return rt.Close(runtime.FdLog)
}

// ByteCountingEcho copies fd 0 to fd 1 unchanged, and separately
// reports the running byte total to fd 2 (log) after every read, as
// an ASCII decimal line. Useful for asserting on the streaming gate:
// a downstream consumer can start as soon as the first count line
// appears, well before this node finishes.
func ByteCountingEcho(ctx context.Context, rt dag.NodeRuntime) error {
	total := 0
	for {
		data, err := rt.Read(runtime.FdStdin, readChunk)
		if len(data) > 0 {
			total += len(data)
			if _, werr := rt.Write(runtime.FdStdout, data); werr != nil {
				return werr
			}
			if _, werr := rt.Write(runtime.FdLog, []byte(fmt.Sprintf("%d\n", total))); werr != nil {
				return werr
			}
		}
		if err != nil {
			if pipe.IsEOF(err) {
				break
			}
			return err
		}
	}
	if err := rt.Close(runtime.FdLog); err != nil {
		return err
	}
	return rt.Close(runtime.FdStdout)
}
