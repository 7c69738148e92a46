// Package subprocess adapts process.Run into a node function: it
// drains a node's fd 0 into the subprocess's stdin, runs it to
// completion, and writes the subprocess's stdout to fd 1 and stderr to
// fd 2 (log). Buffering the whole exchange in memory is a deliberate
// consequence of process.Run's own non-streaming design, not a
// limitation introduced here.
package subprocess
