package fruit

import "sync"

// Store exposes fruit persistence for services and handlers.
type Store interface {
	Create(draft Draft) Fruit
	List() []Fruit
	FindByID(id int64) (Fruit, bool)
	Len() int
}

// MemoryStore implements Store with an ordered in-memory slice.
type MemoryStore struct {
	mu     sync.RWMutex
	items  []Fruit
	lastID int64
}

// NewMemoryStore returns a MemoryStore with the supplied drafts inserted in order.
func NewMemoryStore(seed []Draft) *MemoryStore {
	s := &MemoryStore{items: make([]Fruit, 0, len(seed))}
	for _, d := range seed {
		s.Create(d)
	}
	return s
}

// Create assigns the next sequential id and appends the fruit.
func (s *MemoryStore) Create(draft Draft) Fruit {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	item := Fruit{ID: s.lastID, Name: draft.Name, Price: draft.Price}
	s.items = append(s.items, item)
	return item
}

// List returns every fruit in insertion order.
func (s *MemoryStore) List() []Fruit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]Fruit, 0, len(s.items)), s.items...)
}

// FindByID looks up a fruit by identifier.
func (s *MemoryStore) FindByID(id int64) (Fruit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Fruit{}, false
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reset drops every fruit and restarts numbering at 1.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	s.items = s.items[:0]
	s.lastID = 0
	s.mu.Unlock()
}
