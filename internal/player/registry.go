package player

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// SessionRegistry is a concurrency-safe index of live controllers, one per
// player surface.
type SessionRegistry struct {
	mu    sync.RWMutex
	store Store
}

// NewSessionRegistry constructs a registry with a default in-memory store.
func NewSessionRegistry() *SessionRegistry {
	return NewSessionRegistryWithStore(NewInMemoryStore())
}

// NewSessionRegistryWithStore constructs a registry that uses the given Store.
func NewSessionRegistryWithStore(store Store) *SessionRegistry {
	return &SessionRegistry{store: store}
}

// Add registers c under a fresh id.
func (r *SessionRegistry) Add(c *Controller) SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := SessionID(uuid.NewString())
	r.store.Set(id, c)
	return id
}

// Get returns the controller registered under id.
func (r *SessionRegistry) Get(id SessionID) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Get(id)
}

// Remove unregisters id and returns its controller. Removing an unknown id
// reports false.
func (r *SessionRegistry) Remove(id SessionID) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.store.Get(id)
	if !ok {
		return nil, false
	}
	r.store.Delete(id)
	return c, true
}

// IDs returns the registered ids in sorted order.
func (r *SessionRegistry) IDs() []SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.store.List()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ActiveSessionCount returns the number of sessions that are probing or
// streaming. Used for metrics.
func (r *SessionRegistry) ActiveSessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, id := range r.store.List() {
		c, ok := r.store.Get(id)
		if !ok {
			continue
		}
		switch c.Status().State {
		case StateProbing, StateStreamingReady:
			n++
		}
	}
	return n
}
