// Package env wires together one environment: a Dag, its pipe and KV
// infrastructure, an actor template registry, a scheduler, and the
// telemetry/logging components that surround a run. Components are
// started in registration order through a component.Registry and
// stopped in reverse, following the same lifecycle every other
// flowkit service uses.
package env
