package runtime

import (
	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/flow"
	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/notify"
	"github.com/flowkit/flowkit/pipe"
	"github.com/flowkit/flowkit/seqno"
)

// Shared is the set of collaborators every NodeRuntime instance needs.
// It is owned by package env and passed down to each per-node runtime
// the scheduler constructs.
type Shared struct {
	Dag      *dag.Dag
	Registry *flow.Registry
	Piper    *pipe.Piper
	Queue    *notify.Queue
	KV       kv.Store
	Seq      *seqno.Generator
}
