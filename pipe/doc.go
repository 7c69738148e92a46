// Package pipe implements the byte-stream layer that actors read and write
// through: a Writer/Reader pair backed by a kv.Buffer, plus Piper, the
// path-keyed directory of pipes a run's node graph creates as it executes.
//
// A Writer never blocks: Write always appends immediately and returns. A
// Reader blocks in Read only when it has caught up to the writer's current
// length and the writer is neither closed nor in an error state; it waits
// on the writer's notify.Queue handle using the lock-then-WaitUnsafe
// handoff so a write or close that races the wait is never lost.
package pipe
