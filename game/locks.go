package game

import "sync"

// lockTable hands out one mutex per game. Postgres runs the kill
// transaction at read-committed, which is weaker than serializable, so
// kills within one game are serialized here. Different games never share a
// lock and proceed in parallel.
type lockTable struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[uint]*sync.Mutex)}
}

func (t *lockTable) forGame(gameID uint) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[gameID] = l
	}
	return l
}
