package roster

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// sessionLocks is a lock table keyed by session ID. Entries exist only while some
// caller holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sessionLock
}

type sessionLock struct {
	sem  *semaphore.Weighted // weight 1
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[int64]*sessionLock)}
}

// lock blocks until the session's lock is held or ctx is done. The returned func releases it.
func (l *sessionLocks) lock(ctx context.Context, sessionID int64) (func(), error) {
	l.mu.Lock()
	sl, ok := l.locks[sessionID]
	if !ok {
		sl = &sessionLock{sem: semaphore.NewWeighted(1)}
		l.locks[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	if err := sl.sem.Acquire(ctx, 1); err != nil {
		l.release(sessionID, sl)
		return nil, err
	}
	return func() {
		sl.sem.Release(1)
		l.release(sessionID, sl)
	}, nil
}

func (l *sessionLocks) release(sessionID int64, sl *sessionLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sl.refs--
	if sl.refs == 0 {
		delete(l.locks, sessionID)
	}
}

// size is the number of live entries.
func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
