// Package runtime implements the actor-facing surface (NodeRuntime) a
// scheduler builds once per node invocation and passes to the node's
// dag.Func, plus the DagOpsHandle a node reaches through it to mutate the
// graph it runs in. Both interfaces are declared in package dag to avoid
// an import cycle; this package only implements them.
package runtime
