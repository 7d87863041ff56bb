package booking

import "sync"

// Locker provides mutual exclusion scoped to a room identifier. All
// mutations touching one room's active-interval set run under its lock, so
// check-then-act is a single critical section; operations on different
// rooms proceed independently.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocker returns a keyed mutex with no held locks.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*roomLock)}
}

// Lock acquires the mutex for roomID and returns the matching unlock
// function. Lock entries are reference counted and dropped once the last
// holder releases, so the map never grows with the room catalog.
func (l *Locker) Lock(roomID string) (unlock func()) {
	l.mu.Lock()
	lock, ok := l.locks[roomID]
	if !ok {
		lock = &roomLock{}
		l.locks[roomID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, roomID)
		}
		l.mu.Unlock()
	}
}
