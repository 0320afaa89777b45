package service

import "sync"

// entityLocker serializes read-modify-write operations per document id so
// two concurrent decisions cannot both observe "all approved" and
// double-trigger downstream side effects.
type entityLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEntityLocker() *entityLocker {
	return &entityLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the given id and returns the unlock func.
func (l *entityLocker) Lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
