package player

// Store is the persistence abstraction for live controllers.
// The SessionRegistry uses Store for all reads and writes and provides the
// locking; Store implementations need not be safe for concurrent use.
type Store interface {
	Get(id SessionID) (*Controller, bool)
	Set(id SessionID, c *Controller)
	Delete(id SessionID)
	List() []SessionID
}

// InMemoryStore is a map backed Store.
type InMemoryStore struct {
	sessions map[SessionID]*Controller
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[SessionID]*Controller),
	}
}

// Get implements Store.Get.
func (s *InMemoryStore) Get(id SessionID) (*Controller, bool) {
	c, ok := s.sessions[id]
	return c, ok
}

// Set implements Store.Set.
func (s *InMemoryStore) Set(id SessionID, c *Controller) {
	s.sessions[id] = c
}

// Delete implements Store.Delete.
func (s *InMemoryStore) Delete(id SessionID) {
	delete(s.sessions, id)
}

// List implements Store.List.
func (s *InMemoryStore) List() []SessionID {
	ids := make([]SessionID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
