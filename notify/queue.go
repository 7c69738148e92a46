package notify

import (
	"sync"

	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/logger"
)

// SubscribeFunc is invoked synchronously, under no lock, for every Notify
// call on the handle it was registered against.
type SubscribeFunc func(token int)

type waitResult struct {
	token int
	eof   bool
}

type handleState struct {
	hint    string
	subs    map[uint64]SubscribeFunc
	waiters []chan waitResult
}

// Queue is a thread-safe publish/subscribe queue over integer handles. The
// zero value is not usable; construct with New.
type Queue struct {
	mu      sync.Mutex
	handles map[uint64]*handleState
	nextSub uint64
	log     *logger.Logger
}

// New creates an empty notification queue.
func New() *Queue {
	return &Queue{
		handles: make(map[uint64]*handleState),
		log:     logger.Get("notify"),
	}
}

// Lock acquires the queue's shared mutex. Callers hold it across a
// check-then-WaitUnsafe sequence to avoid lost wakeups.
func (q *Queue) Lock() { q.mu.Lock() }

// Unlock releases the queue's shared mutex.
func (q *Queue) Unlock() { q.mu.Unlock() }

// Whitelist admits handle for subsequent Notify/Subscribe/WaitUnsafe calls.
// hint is a debug label, e.g. the pipe path or node name the handle serves.
func (q *Queue) Whitelist(handle uint64, hint string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.handles[handle]; exists {
		return apperr.AlreadyExists("handle", hint)
	}
	q.handles[handle] = &handleState{hint: hint, subs: make(map[uint64]SubscribeFunc)}
	return nil
}

// Unlist removes admission for handle. Any waiters currently blocked in
// WaitUnsafe are woken with end-of-stream semantics (eof=true). Safe to
// call on an already-unlisted handle.
func (q *Queue) Unlist(handle uint64) {
	q.mu.Lock()
	hs, ok := q.handles[handle]
	if !ok {
		q.mu.Unlock()
		return
	}
	delete(q.handles, handle)
	waiters := hs.waiters
	hs.waiters = nil
	q.mu.Unlock()

	for _, w := range waiters {
		w <- waitResult{eof: true}
	}
	q.log.Debug("handle unlisted", logger.Fields("handle", handle, "hint", hs.hint, "woken", len(waiters)))
}

// Notify delivers token to every current subscriber (synchronously; the
// order among subscribers is not defined) and wakes every waiter blocked in WaitUnsafe on this
// handle. Returns an ENOENT error if handle was never whitelisted or has
// since been unlisted.
func (q *Queue) Notify(handle uint64, token int) error {
	q.mu.Lock()
	hs, ok := q.handles[handle]
	if !ok {
		q.mu.Unlock()
		return apperr.NotFound("handle", "")
	}
	waiters := hs.waiters
	hs.waiters = nil
	subs := make([]SubscribeFunc, 0, len(hs.subs))
	for _, fn := range hs.subs {
		subs = append(subs, fn)
	}
	q.mu.Unlock()

	for _, fn := range subs {
		fn(token)
	}
	for _, w := range waiters {
		w <- waitResult{token: token}
	}
	return nil
}

// Subscribe registers fn to be invoked on every future Notify(handle, ...)
// call, until Unsubscribe. hint is a debug label. Returns a subscription id.
func (q *Queue) Subscribe(handle uint64, fn SubscribeFunc, hint string) (uint64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	hs, ok := q.handles[handle]
	if !ok {
		return 0, apperr.NotFound("handle", hint)
	}
	id := q.nextSub
	q.nextSub++
	hs.subs[id] = fn
	return id, nil
}

// Unsubscribe removes a subscription registered by Subscribe. Safe to call
// on an already-removed subscription or an unlisted handle.
func (q *Queue) Unsubscribe(handle, id uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if hs, ok := q.handles[handle]; ok {
		delete(hs.subs, id)
	}
}

// WaitUnsafe blocks until handle is notified or unlisted. The caller MUST
// hold the queue lock (via Lock) before calling; WaitUnsafe releases it
// while suspended and reacquires it before returning, so the lock is held
// again by the time the caller observes the result. If handle is not
// currently admitted, WaitUnsafe returns immediately with eof=true without
// ever releasing the lock.
func (q *Queue) WaitUnsafe(handle uint64) (token int, eof bool) {
	hs, ok := q.handles[handle]
	if !ok {
		return 0, true
	}
	ch := make(chan waitResult, 1)
	hs.waiters = append(hs.waiters, ch)

	q.mu.Unlock()
	res := <-ch
	q.mu.Lock()

	return res.token, res.eof
}
