// Package process runs an external binary as a subprocess and waits for
// completion, killing the process group on context cancellation (SIGTERM,
// escalating to SIGKILL after a grace period).
//
// It backs the subprocess form of a sandboxed-module actor: package
// nodes/subprocess drains a node's fd 0 into Command.Stdin and, once the
// subprocess exits, writes Result.Stdout to fd 1 and Result.Stderr to fd 2.
package process
