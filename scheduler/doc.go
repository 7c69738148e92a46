// Package scheduler implements Processes: the loop that discovers
// runnable nodes in a dag.Dag, launches them as tasks once their
// can-start predicate is satisfied, and drives a run to completion.
//
// Each pass plans from the target via dag.Plan, launches every
// not-yet-active node whose dependencies are either finished or actively
// streaming at least one byte, and — when a pass makes no progress —
// blocks on the shared notify.Queue progress handle until a pipe
// creation or a node completion wakes it; a pipe write alone does not
// wake it, so the streaming gate is re-evaluated on the next such
// event. The scheduler never
// cancels an in-flight task; once any node's completion code is
// non-zero it stops admitting new tasks but lets what is already running
// drain to completion.
package scheduler
