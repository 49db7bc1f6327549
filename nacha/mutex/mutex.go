package mutex

import (
	"sync"
)

type rwentry struct {
	mu   sync.RWMutex
	refs int
}

// KeyedRWMutex is a set of read/write locks addressed by key. Entries exist only
// while some goroutine holds or waits for them. The zero value is ready to use.
type KeyedRWMutex[K comparable] struct {
	mu    sync.Mutex
	table map[K]*rwentry
}

func (m *KeyedRWMutex[K]) acquire(key K) *rwentry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.table == nil {
		m.table = make(map[K]*rwentry)
	}
	e, ok := m.table[key]
	if !ok {
		e = &rwentry{}
		m.table[key] = e
	}
	e.refs++
	return e
}

func (m *KeyedRWMutex[K]) release(key K) *rwentry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.table[key]
	if !ok {
		panic("mutex: unlock of unlocked key")
	}
	e.refs--
	if e.refs == 0 {
		delete(m.table, key)
	}
	return e
}

func (m *KeyedRWMutex[K]) RLock(key K)   { m.acquire(key).mu.RLock() }
func (m *KeyedRWMutex[K]) RUnlock(key K) { m.release(key).mu.RUnlock() }
func (m *KeyedRWMutex[K]) Lock(key K)    { m.acquire(key).mu.Lock() }
func (m *KeyedRWMutex[K]) Unlock(key K)  { m.release(key).mu.Unlock() }

// Len reports how many keys are currently held or awaited.
func (m *KeyedRWMutex[K]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table)
}
