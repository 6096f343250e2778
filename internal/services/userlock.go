package services

import (
	"sync"

	"github.com/google/uuid"
)

// KeyedLock serializes operations per key (user id or session id) so two
// near-simultaneous updates to the same record never race, while different
// keys proceed fully in parallel. Entries are refcounted and dropped when
// the last holder releases, so the map never grows with the user count.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: map[uuid.UUID]*lockEntry{}}
}

func (l *KeyedLock) Lock(key uuid.UUID) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &lockEntry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

func (l *KeyedLock) Unlock(key uuid.UUID) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if ok {
		e.refs--
		if e.refs <= 0 {
			delete(l.locks, key)
		}
	}
	l.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
