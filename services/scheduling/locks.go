package scheduling

import "sync"

// LockTable serializes booking writes per (club, resource). The
// check-then-act window between the overlap query and the insert must
// be exclusive for one resource's timeline; different resources
// proceed without blocking each other.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockTable constructs an empty LockTable.
func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the exclusive lock for (clubID, resource) and returns
// the unlock function.
func (t *LockTable) Lock(clubID, resource string) func() {
	key := clubID + "\x00" + resource

	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
