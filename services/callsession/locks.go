package callsession

import "sync"

// callLocks serializes event application per provider call id. The
// read-check-apply-update sequence in HandleEvent must be exclusive for
// one call so a duplicate delivery observes the applied-event record
// instead of racing past it; events for different calls proceed
// without blocking each other. The zero value is ready to use.
type callLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the exclusive lock for callID and returns the unlock
// function.
func (c *callLocks) lock(callID string) func() {
	c.mu.Lock()
	if c.locks == nil {
		c.locks = make(map[string]*sync.Mutex)
	}
	l, ok := c.locks[callID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[callID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
