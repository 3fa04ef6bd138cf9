package ecs

// Removable is the common face of every component store, letting the world
// strip a destroyed entity out of all stores without knowing their types.
type Removable interface {
	Remove(id EntityID)
}

// Store holds one component type per entity. Lookups are strongly typed
// through generics; there is no reflection and no interface{} in the data
// path, so a caller can never cast a component to the wrong kind.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[EntityID]*T, 128)}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

// Get returns the entity's component, or (nil, false) when it has none.
func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}
