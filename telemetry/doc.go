// Package telemetry wraps the scheduler's per-node task execution in an
// OpenTelemetry span and records node-level counters/histograms.
//
// Unlike the teacher's dag.WithTracing/WithMetrics, which decorate a Node at
// registration time as an opt-in wrapper, telemetry is wired directly into
// the scheduler's task runner: every node in this runtime is
// scheduler-invoked uniformly, so there is no un-instrumented path to
// preserve.
package telemetry
