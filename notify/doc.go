// Package notify implements a thread-safe publish/subscribe queue over
// integer handles, used to wake tasks suspended on pipe or DAG progress.
//
// Locking discipline: Lock/Unlock serialize the "check condition, register
// waiter" critical section to eliminate the classic lost-wakeup race.
// Callers follow the pattern: (1) Lock, (2) re-check the condition under the
// lock, (3) if the condition still requires waiting, call WaitUnsafe while
// still holding the lock — WaitUnsafe registers the waiter and releases the
// lock atomically with respect to Notify, then reacquires it before
// returning.
//
// Grounded on the hub/client pub-sub loop in sse/hub.go (buffered per-
// subscriber channel, a single run loop serializing registration against
// broadcast) but redesigned: handles are integers rather than string client
// IDs, there is no glob-pattern routing, and waiters use the explicit
// lock-then-wait handoff described above instead of an unconditional
// channel send, since the scheduler's wait condition (has the DAG hash
// changed? has a byte been written?) must be re-checked atomically with
// registering to wait.
package notify
