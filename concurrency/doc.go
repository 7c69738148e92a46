// Package concurrency provides admission control for the scheduler's task
// pool. Bulkhead caps the number of concurrently running node tasks; it is a
// concurrency limit, not a retry mechanism — retry policy is an actor
// concern (spec.md §7), so no retry, circuit-breaker or rate-limiter
// machinery lives here.
package concurrency
