package listing

import "sync"

// lockTable hands out one mutex per listing id so that the
// load-arbitrate-save sequence for a single listing is serialized within
// this process. The optimistic version check on save guards cross-process
// writers.
type lockTable struct {
	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) get(id string) *sync.Mutex {
	t.mu.RLock()
	l, exists := t.locks[id]
	t.mu.RUnlock()
	if exists {
		return l
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if l, exists := t.locks[id]; exists {
		return l
	}
	l = &sync.Mutex{}
	t.locks[id] = l
	return l
}
