package subprocess

import (
	"bytes"
	"context"
	"time"

	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/process"
	"github.com/flowkit/flowkit/runtime"
)

const readChunk = 64 * 1024

// Spec configures one subprocess-backed node. Binary and Args are
// fixed per template; Env and GracePeriod are optional overrides of
// process.Run's defaults.
type Spec struct {
	Binary      string
	Args        []string
	Dir         string
	Env         []string
	GracePeriod time.Duration
}

// Node builds a dag.Func that runs spec as a subprocess once per
// invocation: fd 0 is drained and fed to the subprocess's stdin, the
// subprocess's stdout is written to fd 1, its stderr to fd 2 (log),
// and its exit code becomes the node's errno.
func Node(spec Spec) dag.Func {
	return func(ctx context.Context, rt dag.NodeRuntime) error {
		var stdin bytes.Buffer
		for {
			data, err := rt.Read(runtime.FdStdin, readChunk)
			if err != nil {
				break
			}
			stdin.Write(data)
		}

		result, err := process.Run(ctx, process.Command{
			Binary:      spec.Binary,
			Args:        spec.Args,
			Dir:         spec.Dir,
			Env:         spec.Env,
			Stdin:       &stdin,
			GracePeriod: spec.GracePeriod,
		})
		if result != nil {
			if _, werr := rt.Write(runtime.FdStdout, result.Stdout); werr != nil {
				return werr
			}
			if len(result.Stderr) > 0 {
				if _, werr := rt.Write(runtime.FdLog, result.Stderr); werr != nil {
					return werr
				}
			}
			rt.SetErrno(result.ExitCode)
		}
		if cerr := rt.Close(runtime.FdStdout); cerr != nil {
			return cerr
		}
		if cerr := rt.Close(runtime.FdLog); cerr != nil {
			return cerr
		}
		return err
	}
}
