// Package flow builds concrete dag.Dag nodes from named templates held in
// a Registry, wiring each template's declared inputs to either an
// already-instantiated node/alias or a freshly instantiated one — the
// same DFS-with-cycle-detection shape as resolving a graph of includes,
// applied to per-node template substitution instead of whole-pipeline
// composition. It also loads YAML instantiation plans (LoadPlan) and runs
// them against a Dag (Run).
package flow
