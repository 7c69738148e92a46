// Package dag implements the node graph: names, dependency edges, alias
// groups, and value nodes, plus the DFS-based topological planner a
// scheduler walks to discover runnable work.
//
// A Dag only ever grows — nodes and edges are appended, never removed —
// so a running actor can safely extend it from inside its own Func via a
// DagOpsHandle while other goroutines are reading it for planning.
// HashOfNodeNames gives callers a cheap, order-independent way to detect
// that growth without re-walking the whole structure.
package dag
